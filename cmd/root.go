// Package cmd defines the concierge CLI.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "concierge",
	Short: "Concierge - AI 店舗コンシェルジュ",
	Long: `Concierge answers customer questions on a shop's behalf: it
classifies the question's intents, gathers the shop's knowledge
(FAQ, menu, stock, business hours, semantic search), and asks the
configured model for a grounded answer.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
