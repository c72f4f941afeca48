package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskfleet/eventd/cmd/auditctl/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "auditctl",
		Short: "Ops tool for the task event audit log",
		Long:  "CLI tool for querying the audit trail written by the audit service",
	}

	rootCmd.AddCommand(commands.NewListCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
