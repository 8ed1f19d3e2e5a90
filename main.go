// Package main provides the entry point for the Reader Elf CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/reader-elf/internal/engine"
	"github.com/dgnsrekt/reader-elf/internal/reader"
	"github.com/dgnsrekt/reader-elf/internal/segment"
	"github.com/dgnsrekt/reader-elf/internal/textproc"
)

// Exit codes. Dependency problems and load problems get their own codes
// so wrapper scripts can tell "install piper" apart from "piper broke".
const (
	exitOK                = 0
	exitFailure           = 1
	exitInputNotFound     = 2
	exitDependencyMissing = 3
	exitBackendLoad       = 4
)

// errInputNotFound wraps unreadable --file paths.
var errInputNotFound = errors.New("input file not found")

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile   string
	filePath     string
	literalText  string
	engineName   string
	model        string
	voice        string
	speed        float64
	showNotes    bool
	external     bool
	byParagraph  bool
	streaming    bool
	filePlayback bool
	noCache      bool
	debug        bool

	rootCmd = &cobra.Command{
		Use:   "readerelf",
		Short: "Read text aloud on the CLI, with AI-enabled TTS",
		Long: paragraph(
			fmt.Sprintf("\nRead documents aloud on the CLI, %s.", keyword("one chunk at a time")),
		),
		SilenceErrors:     false,
		SilenceUsage:      true,
		Args:              cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return validateOptions(cmd) },
		RunE:              execute,
	}
)

// envOverrides are environment variables layered over flags and config.
type envOverrides struct {
	Engine string `env:"READER_ELF_ENGINE"`
	Model  string `env:"READER_ELF_MODEL"`
	Player string `env:"READER_ELF_PLAYER"`
	Debug  bool   `env:"READER_ELF_DEBUG"`
}

func validateOptions(cmd *cobra.Command) error {
	overrides, err := env.ParseAs[envOverrides]()
	if err != nil {
		return fmt.Errorf("error parsing environment: %w", err)
	}

	if overrides.Debug {
		debug = true
	}
	if debug || viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	// Diagnostics go to stderr only, never anywhere near synthesized
	// text.
	log.SetOutput(os.Stderr)

	if !cmd.Flags().Changed("engine") {
		if overrides.Engine != "" {
			engineName = overrides.Engine
		} else if v := viper.GetString("engine"); v != "" {
			engineName = v
		}
	}
	if !cmd.Flags().Changed("model") {
		if overrides.Model != "" {
			model = overrides.Model
		} else if v := viper.GetString("model"); v != "" {
			model = v
		}
	}
	if overrides.Player != "" {
		viper.Set("playback.player_command", overrides.Player)
	}
	if !cmd.Flags().Changed("speed") {
		if v := viper.GetFloat64("playback.speed"); v > 0 {
			speed = v
		}
	}

	if speed < 0.5 || speed > 2.0 {
		return fmt.Errorf("speed must be between 0.5 and 2.0, got %.2f", speed)
	}

	// Only the root command consumes input.
	if cmd.Name() != "readerelf" {
		return nil
	}
	if filePath == "" && literalText == "" {
		return errors.New("either --file or --text is required")
	}
	if filePath != "" && literalText != "" {
		return errors.New("--file and --text are mutually exclusive")
	}
	return nil
}

func execute(cmd *cobra.Command, _ []string) error {
	text, err := loadInput()
	if err != nil {
		return err
	}

	cleaned := textproc.Clean(text)
	content, notes := textproc.SplitNotes(cleaned)

	if notes != "" {
		if showNotes {
			fmt.Fprintln(os.Stderr, "--- notes (not read aloud) ---")
			fmt.Fprintln(os.Stderr, notes)
			fmt.Fprintln(os.Stderr, "------------------------------")
		} else {
			log.Info("suppressed a notes section", "bytes", len(notes),
				"hint", "pass --show-notes to see it")
		}
	}

	// When cleaning leaves nothing but guidance, read the guidance;
	// otherwise there would be silence with no explanation.
	if strings.TrimSpace(content) == "" && notes != "" {
		log.Info("main content is empty, reading the notes section instead")
		content = notes
	}

	r, err := reader.Resolve(readerOptions())
	if err != nil {
		return err
	}

	mode := segment.BySentence
	if byParagraph {
		mode = segment.ByParagraph
	}

	return r.Run(cmd.Context(), content, mode)
}

// loadInput reads the text to speak from --file or --text.
func loadInput() (string, error) {
	if literalText != "" {
		return literalText, nil
	}

	b, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", errInputNotFound, filePath, err)
	}
	return string(b), nil
}

// readerOptions assembles backend options from flags and config.
func readerOptions() reader.Options {
	conf := engine.DefaultConfig()
	conf.Model = model
	conf.Voice = voice
	conf.Speed = speed
	if v := viper.GetInt("playback.sample_rate"); v > 0 {
		conf.SampleRate = v
	}
	if v := viper.GetDuration("synthesis_timeout"); v > 0 {
		conf.SynthesisTimeout = v
	}
	conf.DisableParallelism = viper.GetBool("disable_parallelism")

	opts := reader.Options{
		Engine:            engineName,
		Streaming:         streaming,
		External:          external,
		ForceFilePlayback: filePlayback,
		EngineConfig:      conf,
	}

	if cmd := viper.GetString("external_command"); cmd != "" {
		opts.ExternalCommand = strings.Fields(cmd)
	}
	if cmd := viper.GetString("playback.player_command"); cmd != "" {
		opts.PlayerCommand = strings.Fields(cmd)
	}
	if !noCache && viper.GetBool("cache.enabled") {
		opts.CacheDir = cacheDir()
	}

	return opts
}

// cacheDir returns the synthesis cache location, config override first.
func cacheDir() string {
	if dir := viper.GetString("cache.dir"); dir != "" {
		return dir
	}

	scope := gap.NewScope(gap.User, "reader-elf")
	if dir, err := scope.CacheDir(); err == nil {
		return filepath.Join(dir, "synthesis")
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "reader-elf", "synthesis")
	}
	return ""
}

// exitCode maps an error to the process exit code for its class.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errInputNotFound):
		return exitInputNotFound
	case errors.Is(err, engine.ErrDependencyMissing):
		return exitDependencyMissing
	case errors.Is(err, engine.ErrBackendUnavailable):
		return exitBackendLoad
	default:
		return exitFailure
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().StringVarP(&filePath, "file", "f", "", "read text from this file")
	rootCmd.Flags().StringVarP(&literalText, "text", "t", "", "read this literal text")
	rootCmd.Flags().StringVarP(&engineName, "engine", "e", "piper", "TTS engine (piper/gtts/mock)")
	rootCmd.Flags().StringVarP(&model, "model", "m", "en_US-lessac-medium", "model identifier or path")
	rootCmd.Flags().StringVar(&voice, "voice", "", "voice or language code, engine-specific")
	rootCmd.Flags().Float64Var(&speed, "speed", 1.0, "speech rate multiplier (0.5 to 2.0)")
	rootCmd.Flags().BoolVar(&showNotes, "show-notes", false, "print any suppressed notes section to stderr")
	rootCmd.Flags().BoolVar(&external, "external", false, "hand the whole text to an external TTS process")
	rootCmd.Flags().BoolVarP(&byParagraph, "paragraphs", "p", false, "chunk by paragraph instead of sentence")
	rootCmd.Flags().BoolVar(&streaming, "streaming", false, "stream sub-buffers from the engine while it synthesizes")
	rootCmd.Flags().BoolVar(&filePlayback, "file-playback", false, "skip the mixer and play via an external player command")
	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the synthesis cache")

	// Config bindings
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("engine", rootCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("model", rootCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("playback.speed", rootCmd.Flags().Lookup("speed"))

	viper.SetDefault("engine", "piper")
	viper.SetDefault("model", "en_US-lessac-medium")
	viper.SetDefault("playback.speed", 1.0)
	viper.SetDefault("playback.sample_rate", 22050)
	viper.SetDefault("playback.player_command", "")
	viper.SetDefault("external_command", "")
	viper.SetDefault("synthesis_timeout", "60s")
	viper.SetDefault("disable_parallelism", false)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.dir", "")

	rootCmd.AddCommand(configCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "reader-elf")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "reader-elf")}, dirs...)
	}

	if c := os.Getenv("READER_ELF_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("readerelf")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("reader_elf")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}

	configFile = filepath.Join(dirs[0], "readerelf.yml")
}
