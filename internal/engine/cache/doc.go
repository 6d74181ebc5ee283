// Package cache stores raw Open Library responses with TTL expiration.
//
// Reading logs, work records and author searches change rarely, so repeated
// invocations (re-sorting, paging through a long shelf) are served from the cache
// instead of the network. Two backends implement Store:
//   - FileStore keeps one JSON file per entry under ~/.wantlist/cache/
//   - RedisStore shares entries between machines through a Redis server
//
// Keys are SHA-256 hashes of the normalized request URL, see GenerateKey.
package cache
