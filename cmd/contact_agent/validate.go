package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/contact-discovery/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a contacts JSON file against the output schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := schemas.ValidateContactsFile(args[0]); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", args[0])
	return nil
}
