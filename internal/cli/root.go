// Package cli wires the engine's commands.
package cli

import (
	"github.com/spf13/cobra"
)

var cfgPath string

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "agora",
		Short:         "Civic participation engine",
		Long:          "Identity registry, quiz engine and reward ledger behind one HTTP surface.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to the YAML config file")
	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	return root
}

func Execute() error {
	return NewRootCommand().Execute()
}
