package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"myclaim/internal/app"
	"myclaim/internal/config"
	"myclaim/internal/logging"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "myclaimd",
	Short: "Motor insurance claim scoring and document extraction service",
	Long: `myclaimd serves claim approval, coverage and anomaly scoring, answers
policy questions from indexed documents, and extracts claim fields from
uploaded images.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "myclaimd", version)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (env MC_CONFIG)")
	rootCmd.PersistentFlags().String("addr", "", "listen address, overrides http.addr")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("addr", rootCmd.PersistentFlags().Lookup("addr"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.SetEnvPrefix("MC")
	_ = viper.BindEnv("config")

	rootCmd.AddCommand(versionCmd, serveCmd, workerCmd, migrateCmd, scoreCmd, askCmd, extractCmd)
}

// loadConfig reads the YAML file named by --config or MC_CONFIG and applies
// MC_* environment overrides, then flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if addr := viper.GetString("addr"); addr != "" {
		cfg.HTTP.Addr = addr
	}
	if level := viper.GetString("log_level"); level != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (logging.Logger, error) {
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logging.SetDefault(log)
	return log, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// withApp loads configuration, builds the application and hands it to fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("app init: %w", err)
	}
	defer a.Close()
	return fn(ctx, a)
}
