// Package cli implements the frameserver command-line tool: a
// cobra.Command tree with one addXCommand(parent) function per
// subcommand and package-level flag variables bound with
// cobra.Command.Flags().
package cli

import "github.com/spf13/cobra"

// Version is overridden at build time via -ldflags.
var Version = "dev"

// NewRootCmd builds the frameserver command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "frameserver",
		Short:         "Decoded-frame HTTP cache server",
		Long:          "frameserver serves decoded video frames over HTTP from a bounded, concurrent, reference-counted frame cache.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("frameserver {{.Version}}\n")

	addServeCommand(root)
	addFlushCommand(root)
	return root
}
