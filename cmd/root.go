package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkmfujise/redscribe-docs/internal/config"
	"github.com/tkmfujise/redscribe-docs/internal/ctxlog"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	appConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:   "redscribe-docs",
	Short: "Static site generator for the ReDScribe documentation",
	Long: `redscribe-docs builds the ReDScribe documentation website: the
homepage, the tutorial docs and the showcase, in every configured locale.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := ctxlog.New(os.Stderr, logLevel, logFormat)
		if err != nil {
			return err
		}
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))

		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
}

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
}

// loadConfig reads the config file (if any), REDSCRIBE_* environment
// variables and the built-in defaults.
func loadConfig(ctx context.Context) (config.Config, error) {
	log := ctxlog.FromContext(ctx)
	v := viper.New()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("REDSCRIBE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && cfgFile == "":
			log.Info("no config file found, using defaults and environment")
		case errors.Is(err, os.ErrNotExist):
			return config.Config{}, fmt.Errorf("config file %s not found: %w", cfgFile, err)
		default:
			return config.Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Debug("using config file", "path", v.ConfigFileUsed())
	}

	return config.Load(v)
}

// configPath is the file loadConfig reads, for watching.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "config.yaml"
}
