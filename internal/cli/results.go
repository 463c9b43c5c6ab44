package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"quizapp-client/internal/app"
	"quizapp-client/internal/domain"
	"quizapp-client/internal/transport/console"
	transport "quizapp-client/internal/transport/http"
)

// NewResultsCmd groups the scoreboard commands.
func NewResultsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Follow quiz scoreboards",
	}
	cmd.AddCommand(newResultsWatchCmd(configPath))
	cmd.AddCommand(newResultsServeCmd(configPath))
	return cmd
}

func newResultsWatchCmd(configPath *string) *cobra.Command {
	var quizID string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show a live scoreboard in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if quizID == "" {
				return errors.New("--quiz-id is required")
			}
			ctx := cmd.Context()
			d, err := loadDeps(ctx, *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			poller := app.NewResultsPoller(d.api, domain.ID(quizID), d.pageSize(), d.pollInterval())
			err = console.WatchResults(ctx, poller, cmd.InOrStdin(), cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz-id", "", "quiz to watch")
	return cmd
}

func newResultsServeCmd(configPath *string) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve live scoreboards over websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResultsServer(cmd.Context(), *configPath, port)
		},
	}
	envPort := os.Getenv("PORT")
	cmd.Flags().StringVar(&port, "port", envPort, "port to listen on (default from config)")
	return cmd
}

func runResultsServer(ctx context.Context, configPath, portFlag string) error {
	d, err := loadDeps(ctx, configPath)
	if err != nil {
		return err
	}
	defer d.Close()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = d.cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8090"
	}

	handler := transport.NewResultsHandler(d.api, d.pageSize(), d.pollInterval())
	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     handler.Routes(),
		ReadTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("serving results feed on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down results feed...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
