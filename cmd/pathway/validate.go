package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evocall/pathway/pkg/adapters/file"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a pathway document for consistency",
	Long: `Parses the document and reports structural findings: dangling edges,
unreachable nodes, duplicate ids. Only an unresolvable entry point is fatal.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	p, warnings, err := file.Parse(data)
	if err != nil {
		return err
	}

	for _, w := range warnings {
		fmt.Printf("warning [%s] node %q: %s\n", w.Code, w.NodeID, w.Detail)
	}
	if len(warnings) > 0 {
		fmt.Printf("Pathway is usable with %d warning(s).\n", len(warnings))
		return nil
	}

	fmt.Printf("Pathway %q is valid, entry point %q.\n", p.Name, p.EntryPoint)
	return nil
}
