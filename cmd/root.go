package main

import (
	"fmt"

	"codecomp-go/internal/config"
	"codecomp-go/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string

	flagMode        string
	flagWindowSize  int
	flagStartOffset int
	flagMaxLines    int
	flagStemming    bool
	flagPublicOnly  bool
	flagShuffle     bool
	flagCache       bool
	flagLogLevel    string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "codecomp",
	Short: "Turn tokenized source code into sequence-model training tensors",
	Long: `codecomp reads corpora with one token list per line, as produced by the Go
tokenizer front end, and encodes them into fixed-width windows for training
next-identifier and next-token models.

Settings come from the YAML file given with --config, then CODECOMP_*
environment variables (a .env file is loaded first), then flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to YAML configuration file")
	pf.StringVar(&flagMode, "mode", "", "Unit mode: ids, tokens or unified")
	pf.IntVar(&flagWindowSize, "window-size", 0, "Number of context rows per sample")
	pf.IntVar(&flagStartOffset, "start-offset", 0, "Leading units of a line that never become a target")
	pf.IntVar(&flagMaxLines, "max-lines", 0, "Stop after this zero-based line number (0 reads everything)")
	pf.BoolVar(&flagStemming, "stemming", false, "Apply the Snowball English stemmer to fragments")
	pf.BoolVar(&flagPublicOnly, "public-only", false, "Skip lower-case identifiers other than predeclared ones")
	pf.BoolVar(&flagShuffle, "shuffle", true, "Shuffle samples before training")
	pf.BoolVar(&flagCache, "cache", false, "Write the encoded dataset beside the corpus")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(prepareCmd, segmentCmd, vocabCmd, windowCmd)
}

// setup loads the configuration, applies explicit flags, validates the
// result and builds the logger
func setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	p := &loaded.Pipeline
	if flags.Changed("mode") {
		p.Mode = flagMode
	}
	if flags.Changed("window-size") {
		p.WindowSize = flagWindowSize
	}
	if flags.Changed("start-offset") {
		p.StartOffset = &flagStartOffset
	}
	if flags.Changed("max-lines") {
		p.MaxLines = flagMaxLines
	}
	if flags.Changed("stemming") {
		p.Stemming = flagStemming
	}
	if flags.Changed("public-only") {
		p.PublicOnly = flagPublicOnly
	}
	if flags.Changed("shuffle") {
		p.Shuffle = flagShuffle
	}
	if flags.Changed("cache") {
		p.Cache = flagCache
	}
	if flags.Changed("log-level") {
		loaded.Logging.Level = flagLogLevel
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	l, err := logging.New(loaded.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, logger = loaded, l
	logger.Debug("Configuration loaded", zap.Any("config", cfg))
	return nil
}
