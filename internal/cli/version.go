package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version and Commit are stamped with -ldflags at release time.
var (
	Version = "dev"
	Commit  = ""
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the anchor version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString(Version, revision()))
		},
	}
}

func versionString(version, commit string) string {
	if commit == "" {
		return "anchor version " + version
	}
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("anchor version %s (%s)", version, commit)
}

// revision falls back to the VCS stamp of `go build` when no commit was
// injected.
func revision() string {
	if Commit != "" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}
