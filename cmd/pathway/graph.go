package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evocall/pathway/internal/presentation/graph"
	"github.com/evocall/pathway/pkg/adapters/file"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Export the pathway graph visualization",
	Long:  `Parses the pathway document and outputs a Mermaid diagram (graph TD) representing the call flow.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Error reading document: %v\n", err)
			os.Exit(1)
		}

		p, _, err := file.Parse(data)
		if err != nil {
			fmt.Printf("Error parsing pathway: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(graph.GenerateMermaid(p, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
