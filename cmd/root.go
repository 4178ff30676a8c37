package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bkarpinos/linkvault/internal/config"
	"github.com/bkarpinos/linkvault/internal/kvstore"
	"github.com/bkarpinos/linkvault/internal/library"
	"github.com/bkarpinos/linkvault/internal/link"
	"github.com/bkarpinos/linkvault/internal/storage"
	"github.com/bkarpinos/linkvault/internal/transfer"
)

var (
	configDir string // Directory containing config files
	cfg       *config.Config

	backend  kvstore.Backend
	fileSlot *kvstore.File // set when the file backend is in use
	repo     *storage.Repository
	lib      *library.Service
	xfer     *transfer.Service
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "linkvault",
	Short: "A personal bookmark library for the terminal",
	Long: `linkvault keeps your bookmarks organized in folders with tags,
favorites and a read-later list. Deleted links go to a trash you can
restore from. For example:

linkvault add https://go.dev --title "Go" --folder Study --tags go,docs
linkvault list --view favorites
linkvault delete <id>   (moves the link to the trash)
linkvault serve         (JSON API and go/<id> redirects)`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	// Variables from .env files never override the real environment
	if err := config.LoadDotEnv(".env", filepath.Join(configDir, ".env")); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading .env: %v\n", err)
	}

	var err error
	cfg, err = config.Load(viper.GetViper(), configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Level())

	if err := openStorage(); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}
}

func setupLogging(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// openStorage wires the configured backend into the store, repository and
// services, then prepares the stored data for this run.
func openStorage() error {
	logger := log.Logger

	switch cfg.Backend {
	case config.BackendSQLite:
		sqlBackend, err := kvstore.NewSQL(cfg.DatabaseDSN(), cfg.Namespace)
		if err != nil {
			return err
		}
		backend = sqlBackend
	default:
		if err := os.MkdirAll(cfg.StorageDir, 0o755); err != nil {
			return fmt.Errorf("create storage directory: %w", err)
		}
		f, err := kvstore.NewFile(cfg.FilePath(), logger.With().Str("component", "kvstore").Logger())
		if err != nil {
			return err
		}
		backend, fileSlot = f, f
	}

	store := kvstore.New(backend,
		kvstore.WithQuota(cfg.QuotaBytes),
		kvstore.WithLogger(logger.With().Str("component", "kvstore").Logger()))
	repo = storage.NewRepository(store, storage.WithLogger(logger.With().Str("component", "storage").Logger()))
	lib = library.New(repo, library.WithLogger(logger.With().Str("component", "library").Logger()))
	xfer = transfer.New(repo, transfer.WithLogger(logger.With().Str("component", "transfer").Logger()))

	seeded, err := repo.Bootstrap(link.SeedLinks())
	if err != nil {
		return err
	}
	if seeded {
		log.Info().Msg("first run: added sample links")
	}
	return nil
}

// closeStorage releases backend resources.
func closeStorage() {
	if c, ok := backend.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close storage")
		}
	}
}

func init() {
	// Determine config directory
	defaultDir, err := config.DefaultDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", defaultDir, "Directory holding config.yaml")
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) { closeStorage() }

	// Initialize config before executing commands
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(
		addCmd, listCmd, showCmd, editCmd, favoriteCmd, laterCmd, openCmd,
		deleteCmd, restoreCmd, purgeCmd, emptyTrashCmd,
		folderCmd, settingsCmd,
		exportCmd, importCmd, statsCmd, clearCmd,
		serveCmd, configCmd,
	)
}
