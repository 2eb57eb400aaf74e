package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/evocall/pathway"
	"github.com/evocall/pathway/internal/logging"
	httpAdapter "github.com/evocall/pathway/pkg/adapters/http"
	openaiAdapter "github.com/evocall/pathway/pkg/adapters/openai"
	redisAdapter "github.com/evocall/pathway/pkg/adapters/redis"
	"github.com/evocall/pathway/pkg/apps"
	"github.com/evocall/pathway/pkg/observability"
	backend "github.com/redis/go-redis/v9"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the session HTTP server",
	Long: `Starts the engine in server mode, exposing the session JSON API over
HTTP. Sessions live in this process; point your telephony host at it.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		port, _ := cmd.Flags().GetString("port")
		modelName, _ := cmd.Flags().GetString("model")
		baseURL, _ := cmd.Flags().GetString("base-url")
		redisAddr, _ := cmd.Flags().GetString("redis")
		calendarURL, _ := cmd.Flags().GetString("calendar-url")
		crmURL, _ := cmd.Flags().GetString("crm-url")
		chatURL, _ := cmd.Flags().GetString("chat-url")

		logger := logging.New(slog.LevelInfo)

		var modelOpts []openaiAdapter.Option
		if modelName != "" {
			modelOpts = append(modelOpts, openaiAdapter.WithModel(modelName))
		}
		if baseURL != "" {
			modelOpts = append(modelOpts, openaiAdapter.WithBaseURL(baseURL))
		}

		metrics := observability.NewMetrics("")
		engineOpts := []pathway.Option{
			pathway.WithLogger(logger),
			pathway.WithExecutors(buildRegistry(calendarURL, crmURL, chatURL)),
			pathway.WithLifecycleHooks(metrics.Hooks()),
		}

		if redisAddr != "" {
			client := backend.NewClient(&backend.Options{Addr: redisAddr})
			engineOpts = append(engineOpts,
				pathway.WithCredentialStore(redisAdapter.NewCredentialStore(client)),
				pathway.WithEventSink(redisAdapter.NewSink(client)),
			)
		}

		engine, err := pathway.New(dir, openaiAdapter.New(modelOpts...), engineOpts...)
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}

		handler := httpAdapter.NewHandler(engine.Sessions(),
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetricsHandler(metrics.Handler()),
		)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Pathway Server on %s\n", srv.Addr)
			fmt.Printf("Serving pathways from: %s\n", dir)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Pathway Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("model", "", "Model name (default gpt-4o-mini)")
	serveCmd.Flags().String("base-url", "", "OpenAI-compatible endpoint base URL")
	serveCmd.Flags().String("redis", "", "Redis address for credentials and the event stream (optional)")
	serveCmd.Flags().String("calendar-url", "", "Calendar integration base URL")
	serveCmd.Flags().String("crm-url", "", "CRM integration base URL")
	serveCmd.Flags().String("chat-url", "", "Chat integration base URL")
}

// buildRegistry wires HTTP executors for the configured integrations and
// canned ones for the rest, so app_action nodes always resolve.
func buildRegistry(calendarURL, crmURL, chatURL string) *apps.Registry {
	registry := apps.NewRegistry()

	if calendarURL != "" {
		registry.Register("calendar", apps.NewCalendar(calendarURL))
	} else {
		registry.Register("calendar", apps.NewStatic())
	}
	if crmURL != "" {
		registry.Register("crm", apps.NewCRM(crmURL))
	} else {
		registry.Register("crm", apps.NewStatic())
	}
	if chatURL != "" {
		registry.Register("chat", apps.NewChat(chatURL))
	} else {
		registry.Register("chat", apps.NewStatic())
	}
	registry.Register("webhook", apps.NewWebhook())

	return registry
}
