package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pathway",
	Short: "Pathway is a conversation pathway engine for voice and text agents",
	Long: `Pathway drives multi-turn conversations through a directed graph of
conversational states, with AI-judged transitions and app integrations.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the pathway documents")
}
