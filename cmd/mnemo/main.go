package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var (
		configFile string
		debugMode  bool
	)
	a := &app{}

	rootCommand := &cobra.Command{
		Use:           "mnemo",
		Short:         "Personal flashcard study engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(configFile, debugMode)
		},
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	rootCommand.AddCommand(
		newImportCommand(a),
		newStudyCommand(a),
		newSearchCommand(a),
		newDecksCommand(a),
	)
	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "mnemo: %v\n", err)
		os.Exit(1)
	}
}
