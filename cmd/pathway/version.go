package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evocall/pathway"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pathway",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pathway version %s\n", pathway.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
