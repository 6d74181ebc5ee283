package cache

import jsoniter "github.com/json-iterator/go"

//nolint:gochecknoglobals // Shared codec configuration.
var json = jsoniter.ConfigCompatibleWithStandardLibrary
