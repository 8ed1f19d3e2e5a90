package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# readerelf configuration

# TTS engine: piper, gtts, or mock
engine: "piper"

# Model identifier or path, engine-specific
model: "en_US-lessac-medium"

playback:
  # Speech rate multiplier, 0.5 to 2.0
  speed: 1.0
  # Mixer output sample rate in Hz
  sample_rate: 22050
  # External player command for --file-playback; autodetected when empty
  player_command: ""

# Full command line for --external mode, e.g. "piper --output-raw"
external_command: ""

# Per-chunk synthesis timeout
synthesis_timeout: "60s"

# Pin engine subprocesses to a single thread
disable_parallelism: false

cache:
  # Reuse synthesized audio across runs
  enabled: true
  # Cache location; empty means the platform user cache directory
  dir: ""
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the readerelf config file",
	Long:    paragraph(fmt.Sprintf("\n%s the readerelf config file in your default $EDITOR.", keyword("Edit"))),
	Example: paragraph("readerelf config\n  readerelf config --config path/to/readerelf.yml"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("readerelf", configFile)
		if err != nil {
			return err
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return err
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
	}
	if configFile == "" {
		return fmt.Errorf("no config file path known")
	}
	if ext := filepath.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported config type: use '%s' or '%s'",
			ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return err
		}

		f, err := os.Create(configFile)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(strings.TrimLeftFunc(defaultConfig, func(r rune) bool {
			return r == '\n'
		})); err != nil {
			return err
		}
	} else if err != nil { // some other error occurred
		return err
	}

	return nil
}
