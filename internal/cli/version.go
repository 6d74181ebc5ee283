package cli

import (
	"github.com/spf13/cobra"

	"github.com/shelfwatch/wantlist/pkg/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if short {
				cmd.Println(version.GetVersion())
				return
			}
			cmd.Printf("wantlist %s\n", version.GetVersion())
			cmd.Printf("  commit:     %s\n", version.GetGitCommit())
			cmd.Printf("  built:      %s\n", version.GetBuildDate())
			cmd.Printf("  release:    %t\n", version.IsRelease())
			cmd.Printf("  user agent: %s\n", version.UserAgent())
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	return cmd
}
