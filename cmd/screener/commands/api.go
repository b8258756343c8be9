package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/gemscreener/internal/api"
	"github.com/wonny/gemscreener/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `최근 스크리닝 결과(in-memory)를 제공하는 REST API 서버를 시작합니다.
--with-scheduler 를 주면 같은 프로세스에서 스케줄러도 실행하여 결과를 채웁니다.

Endpoints:
  GET  /health
  GET  /api/results
  GET  /api/results/{market}
  GET  /api/results/{market}/picks?action=&limit=
  GET  /api/results/{market}/gems
  GET  /api/results/{market}/rejections
  GET  /api/daily
  GET  /api/score/{market}/{ticker}
  GET  /api/config
  GET  /api/config/benchmarks/{sector}

Example:
  go run ./cmd/screener api
  go run ./cmd/screener api --port 8089 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "run the job scheduler in-process")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Gem Screener API Server ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	router := api.NewRouter(api.Handlers{
		Results: handlers.NewResultsHandler(a.store, a.log.Module("api")),
		Score:   handlers.NewScoreHandler(a.orch.Scorer(), a.log.Module("api")),
		Config:  handlers.NewConfigHandler(a.strategy, a.snapshot),
	}, a.log.Module("http"))
	server := api.New(a.cfg, a.log, router)

	if apiWithScheduler {
		sched, err := initScheduler(a)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signalContext()
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
