package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milk9111/hexskirmish/prefabs"
	"github.com/milk9111/hexskirmish/script"
)

var validateCmd = &cobra.Command{
	Use:   "validate [scenario...]",
	Short: "Check scenario files and their scripts",
	Long: `Parses and validates each named scenario, or every embedded one when none
is named, and compiles the script each scenario refers to.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := args
		if len(names) == 0 {
			names = prefabs.Scenarios()
		}

		var errs []error
		for _, name := range names {
			if err := validateScenario(name); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok  %s\n", name)
		}
		return errors.Join(errs...)
	},
}

func validateScenario(name string) error {
	spec, err := prefabs.LoadScenario(name)
	if err != nil {
		return err
	}
	if spec.Script == "" {
		return nil
	}
	_, err = script.Load(spec.Script)
	return err
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
