package cli

import (
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"docqa/internal/adapter/webloader"
	"docqa/internal/chatlog"
	"docqa/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the question answering web server",
	Long: `Start the web UI and JSON API. The server answers questions over the
indexed knowledge base and accepts new documents via upload or URL.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	comps, err := openComponents(false)
	if err != nil {
		return err
	}
	defer comps.Close()

	chat := chatlog.New(cfg.Logging.ChatLogFile, cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups)
	defer chat.Close()

	backends := backendsFromConfig(cfg)
	for name, backend := range backends {
		if err := backend.Configured(); err != nil {
			log.Warn("backend not configured", slog.String("backend", name), slog.String("reason", err.Error()))
		}
	}

	loader := webloader.NewLoader(30 * time.Second)

	srv, err := web.NewServer(cfg, log, chat, comps.retriever, backends, comps.ingest, loader)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
