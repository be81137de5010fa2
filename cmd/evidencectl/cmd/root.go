package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/evidencekit/evidence"
	"github.com/evidencekit/evidence/config"
	"github.com/evidencekit/evidence/metrics"
)

type envKey struct{}

// environment is what every subcommand works against
type environment struct {
	cfg       *config.Config
	registry  *evidence.Registry
	archive   *evidence.Archive
	suite     evidence.CipherSuite
	collector *metrics.Collector
	opts      []evidence.Option
}

func envFrom(cmd *cobra.Command) (*environment, error) {
	env, ok := cmd.Context().Value(envKey{}).(*environment)
	if !ok {
		return nil, fmt.Errorf("environment not initialized")
	}
	return env, nil
}

// NewRootCommand builds the evidencectl command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "evidencectl",
		Short: "Generate and decode encrypted evidence records",
		Long: `evidencectl produces encrypted evidence records into an archive
directory and decodes them back into their fields and content.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			env, err := envFrom(cmd)
			if err != nil {
				return nil
			}
			if env.cfg.Metrics.Textfile == "" {
				return nil
			}
			if err := env.collector.WriteTextfile(env.cfg.Metrics.Textfile); err != nil {
				return fmt.Errorf("failed to write metrics: %w", err)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "Path to a YAML configuration file")
	flags.StringP("dir", "d", "", "Archive directory (overrides archive.dir)")
	flags.StringP("key", "k", "", "Hex-encoded record key (overrides key.hex)")
	flags.String("cipher", "", "Cipher suite: aes-cbc or aes-xts (overrides cipher)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("metrics-file", "", "Write Prometheus metrics to this file on exit")

	root.AddCommand(newGenerateCmd(), newDecodeCmd(), newTypesCmd())
	return root
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := cfg.NewLogger(cmd.ErrOrStderr())

	suite, err := cfg.CipherSuite()
	if err != nil {
		return err
	}
	provider, err := evidence.NewEncryptionProvider(suite)
	if err != nil {
		return err
	}

	dir, err := filepath.Abs(cfg.Archive.Dir)
	if err != nil {
		return fmt.Errorf("invalid archive directory: %w", err)
	}
	archive, err := evidence.NewArchive(newOSFS(dir), "/")
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}

	collector := metrics.NewCollector(cfg.Metrics.Namespace, nil)

	env := &environment{
		cfg:       cfg,
		registry:  evidence.NewDefaultRegistry(),
		archive:   archive,
		suite:     suite,
		collector: collector,
		opts: []evidence.Option{
			evidence.WithEncryptionProvider(provider),
			evidence.WithObserver(collector),
			evidence.WithLogger(logger.With("component", "evidence.record")),
		},
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, envKey{}, env))
	return nil
}

// loadConfig reads the config file, if any, and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")

	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.ReadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v, _ := flags.GetString("dir"); v != "" {
		cfg.Archive.Dir = v
	}
	if v, _ := flags.GetString("key"); v != "" {
		cfg.Key.Source = "hex"
		cfg.Key.Hex = v
	} else if v := os.Getenv(config.EnvKeyHex); v != "" && cfg.Key.Source == "hex" && cfg.Key.Hex == "" {
		cfg.Key.Hex = v
	}
	if v, _ := flags.GetString("cipher"); v != "" {
		cfg.Cipher = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v, _ := flags.GetString("metrics-file"); v != "" {
		cfg.Metrics.Textfile = v
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
