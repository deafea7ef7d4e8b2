package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docqa/config"
	"docqa/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	log     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Retrieval-augmented question answering over your documents",
	Long: `docqa indexes local documents and web pages into a vector knowledge base
and answers questions about them through a hosted language model, with
citations back to the sources.

Example usage:
  docqa index ./docs             # Index a directory of documents
  docqa index https://a.site/x   # Index a web page
  docqa ask "What is the refund policy?"
  docqa serve                    # Start the web UI`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		// API keys usually live in a .env file next to the knowledge base.
		_ = godotenv.Load()

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log = logging.New(cfg.Logging.Level)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./docqa.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}
