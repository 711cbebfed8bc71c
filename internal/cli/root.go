package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	applog "github.com/ppiankov/labeleval/internal/log"
	"github.com/ppiankov/labeleval/internal/model"
)

// Version is set at build time
var Version = "v0.1.0"

var (
	cfgFile    string
	verbose    bool
	outputJSON bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "labeleval",
	Short: "labeleval - sentiment classifier evaluation pipeline",
	Long: `labeleval imports a labelled review corpus, normalizes it into a
(source, target) table, runs a sequence classification model over it in
batches and scores the predictions.

Stages can be run one at a time (analyze, profile, infer, evaluate) or
end to end (run). The serve command exposes single-text inference over HTTP.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of labeleval.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "labeleval %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.labeleval/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&outputJSON, "json", false, "print reports as JSON instead of YAML")
	flags.String("dataset", "", "corpus identifier (hub dataset, file path or URL)")
	flags.String("model", "", "model identifier (directory, served model or OpenAI model)")
	flags.String("backend", "", "model backend (local, kserve, openai, none)")
	flags.String("source", "", "corpus source (hub, file, url)")
	flags.Int("limit", 0, "number of normalized samples to keep, 0 keeps all (default: corpus.limit)")
	flags.Int("batch-size", 0, "inference batch size (default: inference.batch_size)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	// Bind flags to viper
	for key, flag := range map[string]string{
		"verbose":              "verbose",
		"parameters.dataset":   "dataset",
		"parameters.model":     "model",
		"model.backend":        "backend",
		"corpus.source":        "source",
		"corpus.limit":         "limit",
		"inference.batch_size": "batch-size",
		"log.level":            "log-level",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := registerDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".labeleval"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match LABELEVAL_* (e.g. LABELEVAL_MODEL_BACKEND)
	viper.SetEnvPrefix("LABELEVAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// Keys omitted from the marshalled defaults are bound explicitly
	for _, key := range []string{"model.api_key", "model.vocab", "model.base_url", "http.http_proxy", "http.https_proxy", "http.no_proxy"} {
		_ = viper.BindEnv(key)
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults exposes every config key to viper so env overrides apply to all of them
func registerDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	setDefaults(v, "", tree)
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for key, value := range tree {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			setDefaults(v, key, nested)
			continue
		}
		v.SetDefault(key, value)
	}
}

// loadConfig resolves flags, env, config file and defaults into a validated Config
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	if cfg.Model.Backend == "none" {
		cfg.Model.Backend = ""
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads configuration and builds the logger shared by every command
func setup() (*model.Config, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if verbose && cfg.Log.Level == "info" {
		cfg.Log.Level = "debug"
	}
	logger, err := applog.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, logger, nil
}
