package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/labeleval/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve single-text inference over HTTP",
	Long: `Load the model and start the query server:

  POST /infer    {"question": "..."} -> {"infer": "POSITIVE" | null}
  GET  /health   liveness and model state
  GET  /metrics  Prometheus metrics

The server stops gracefully on SIGINT or SIGTERM.`,
	Example: `  labeleval serve --backend local --model ./models/rubert-tiny`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := loadPipeline(ctx, cfg, nil, logger)
		if err != nil {
			return err
		}

		gin.SetMode(cfg.Server.Mode)
		addr := cfg.Server.Addr()
		logger.Info("starting query server", zap.String("addr", addr), zap.Bool("model_loaded", p.ModelLoaded()))
		return server.New(addr, p, logger).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
