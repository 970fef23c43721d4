package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootDir string

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Nasabah customer portal",
	Long: `Server-rendered portal for the nasabah API.

Customers register, log in, check and edit their profile, and pick
courses from the matkul catalogue.  Every page talks to the remote API;
the portal itself stores nothing beyond in-memory sessions.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		if rootDir != "" {
			_ = os.Setenv("PORTAL_ROOT", rootDir)
		}
	},
	RunE: runServe,
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "directory holding conf/portal.yaml (default: discovered)")
	rootCmd.AddCommand(serveCmd, formsCmd)
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
}
