package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evocall/pathway"
	"github.com/evocall/pathway/internal/logging"
	openaiAdapter "github.com/evocall/pathway/pkg/adapters/openai"
	"github.com/evocall/pathway/pkg/apps"
	"github.com/evocall/pathway/pkg/domain"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <pathway-id>",
	Short: "Run a pathway as an interactive text conversation",
	Long: `Simulates a call on your terminal: you type the caller's utterances,
the engine answers. App actions run against canned executors, so no
integration is touched. Requires OPENAI_API_KEY (or --base-url pointing at a
compatible endpoint).`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		modelName, _ := cmd.Flags().GetString("model")
		baseURL, _ := cmd.Flags().GetString("base-url")
		verbose, _ := cmd.Flags().GetBool("verbose")

		if err := runInteractive(dir, args[0], modelName, baseURL, verbose); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("model", "", "Model name (default gpt-4o-mini)")
	runCmd.Flags().String("base-url", "", "OpenAI-compatible endpoint base URL")
	runCmd.Flags().BoolP("verbose", "v", false, "Log engine internals to stderr")
}

func runInteractive(dir, pathwayID, modelName, baseURL string, verbose bool) error {
	logger := logging.NewNop()
	if verbose {
		logger = logging.New(slog.LevelDebug)
	}

	var modelOpts []openaiAdapter.Option
	if modelName != "" {
		modelOpts = append(modelOpts, openaiAdapter.WithModel(modelName))
	}
	if baseURL != "" {
		modelOpts = append(modelOpts, openaiAdapter.WithBaseURL(baseURL))
	}

	eng, err := pathway.New(dir, openaiAdapter.New(modelOpts...),
		pathway.WithLogger(logger),
		pathway.WithExecutors(simulationRegistry()),
	)
	if err != nil {
		return err
	}

	ctx := context.Background()
	sess, err := eng.NewSession(ctx, pathwayID, "local-run", "local-user")
	if err != nil {
		return err
	}

	// Opening turn: entry greeting.
	effects, err := eng.Turn(ctx, sess, "")
	if err != nil {
		return err
	}
	if printEffects(effects) {
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		utterance := strings.TrimSpace(scanner.Text())
		if utterance == "" {
			continue
		}

		effects, err := eng.Turn(ctx, sess, utterance)
		if err != nil {
			return err
		}
		if printEffects(effects) {
			return nil
		}
	}
}

// simulationRegistry wires every known app to a canned executor so
// app_action nodes complete without real integrations.
func simulationRegistry() *apps.Registry {
	registry := apps.NewRegistry()
	for _, app := range []string{"calendar", "crm", "chat", "webhook"} {
		registry.Register(app, apps.NewStatic())
	}
	return registry
}

// printEffects renders the effects and reports whether the call ended.
func printEffects(effects []domain.Effect) bool {
	done := false
	for _, eff := range effects {
		switch eff.Kind {
		case domain.EffectSpeak:
			fmt.Printf("agent> %s\n", eff.Text)
		case domain.EffectTerminate:
			fmt.Println("-- call ended --")
			done = true
		case domain.EffectRedirect:
			fmt.Printf("-- call transferred to %s --\n", eff.Destination)
			done = true
		}
	}
	return done
}
