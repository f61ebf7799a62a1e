// Package pseudoflow is the CLI harness for the flow engine: a `run`
// subcommand that executes a FlowSpec file against a live cluster exactly
// once (the shape a controller's reconcile loop would invoke internally),
// and a `describe` subcommand that previews or inspects one without
// necessarily running it.
package pseudoflow

import (
	"github.com/spf13/cobra"
	"k8s.io/cli-runtime/pkg/genericiooptions"
)

// NewRootCmd mirrors the teacher CLI's root command shape: silenced
// errors/usage (the subcommands print their own diagnostics), completion
// disabled, and a hidden no-op help subcommand.
func NewRootCmd(streams genericiooptions.IOStreams) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pseudoflow",
		Short:         "Run and inspect PseudoFlow step sequences against a Kubernetes cluster.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:    "no-help",
		Hidden: true,
	})
	rootCmd.AddCommand(NewRunCmd(streams))
	rootCmd.AddCommand(NewDescribeCmd(streams))
	return rootCmd
}
