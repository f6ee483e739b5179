package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "billing-ledger",
	Short: "On-ledger recurring billing service",
	Long:  "Billing ledger: subscription plans, enrollments and self-rescheduling recurring payments.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
