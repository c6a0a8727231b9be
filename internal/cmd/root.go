package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/gofulmen/appidentity"
	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/picoyplaca/picoyplaca/internal/appid"
	"github.com/picoyplaca/picoyplaca/internal/config"
	"github.com/picoyplaca/picoyplaca/internal/observability"
)

var (
	cfgFile string
	verbose bool

	appIdentity *appidentity.Identity

	// Set by main.
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo records build metadata for the version and health commands.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// GetAppIdentity returns the loaded app identity. Valid after initConfig.
func GetAppIdentity() *appidentity.Identity {
	return appIdentity
}

var rootCmd = &cobra.Command{
	// initConfig replaces these from the app identity.
	Use:   filepath.Base(os.Args[0]),
	Short: "Pico y placa circulation predictor",
	Long: `Predict whether a car may be on the road under the "Pico y placa"
weekday and last-digit restriction.

Use the subcommands to check one plate, a batch of plates, print the
schedule, or run the HTTP service.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. main calls it once.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Keep config loading from emitting metrics; serve installs the real
	// telemetry system later.
	if sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: false}); err == nil {
		telemetry.SetGlobalSystem(sys)
	}

	if identity, err := appid.Get(context.Background()); err == nil && identity != nil {
		appIdentity = identity
		applyIdentity(identity)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; defaults to app identity config path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func applyIdentity(identity *appidentity.Identity) {
	name := appid.BinaryName(identity)
	rootCmd.Use = name
	if identity.Description != "" {
		rootCmd.Short = identity.Description
		rootCmd.Long = fmt.Sprintf("%s - %s\n\nUse the subcommands to perform specific operations.", name, identity.Description)
	}
}

// initConfig resolves identity, logger, and configuration before any
// subcommand runs.
func initConfig() {
	identity, err := appid.Get(context.Background())
	if err != nil {
		ExitWithCodeStderr(foundry.ExitFileNotFound, "Failed to load app identity", err)
	}
	appIdentity = identity
	applyIdentity(identity)

	configName := config.DefaultName
	if identity.ConfigName != "" {
		configName = identity.ConfigName
	}
	if f := rootCmd.PersistentFlags().Lookup("config"); f != nil {
		if path := config.DefaultConfigPath(configName); path != "" {
			f.Usage = fmt.Sprintf("config file (default is %s)", path)
		}
	}

	observability.InitCLILogger(appid.BinaryName(identity), verbose)
	logger := observability.CLILogger

	v := viper.GetViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if dir := gfconfig.GetAppConfigDir(configName); dir != "" {
			v.AddConfigPath(dir)
			v.SetConfigName("config")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				ExitWithCode(logger, foundry.ExitFileNotFound, "Could not find home directory", err)
			}
			logger.Debug("Could not resolve XDG config directory, using home directory")
			v.AddConfigPath(home)
			v.SetConfigName("." + configName)
		}
		v.AddConfigPath("./config")
		v.SetConfigType("yaml")
	}

	// viper inserts its own separator after the prefix.
	v.SetEnvPrefix(strings.TrimSuffix(appid.EnvPrefix(identity), "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	config.SetDefaults(v)

	if err := v.ReadInConfig(); err == nil {
		logger.Debug("Using config file", zap.String("path", v.ConfigFileUsed()))
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		logger.Debug("No config file found, using defaults and environment variables")
	} else if cfgFile != "" {
		ExitWithCode(logger, foundry.ExitFileNotFound, "Failed to read config file", err)
	} else {
		logger.Warn("Error reading config file", zap.Error(err))
	}

	if _, err := config.Load(v); err != nil {
		ExitWithCode(logger, foundry.ExitConfigInvalid, "Invalid configuration", err)
	}
}

// currentConfig returns the loaded configuration, or defaults when
// initConfig has not run (as in tests that call run functions directly).
func currentConfig() *config.Config {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg
	}
	v := viper.New()
	config.SetDefaults(v)
	cfg, err := config.Load(v)
	if err != nil {
		// Defaults are static and validated by the config tests.
		panic(err)
	}
	return cfg
}
