package reader

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/reader-elf/internal/audio"
	"github.com/dgnsrekt/reader-elf/internal/cache"
	"github.com/dgnsrekt/reader-elf/internal/engine"
	"github.com/dgnsrekt/reader-elf/internal/engine/gtts"
	"github.com/dgnsrekt/reader-elf/internal/engine/mock"
	"github.com/dgnsrekt/reader-elf/internal/engine/piper"
)

// Options selects and configures the run's backends. Both the engine and
// the playback backend are resolved exactly once, here; nothing is
// re-probed per chunk.
type Options struct {
	// Engine names the TTS backend: piper, gtts, or mock.
	Engine string

	// Streaming selects the engine's streaming shape where one exists.
	Streaming bool

	// External bypasses the in-process pipeline and hands the whole
	// text to ExternalCommand.
	External        bool
	ExternalCommand []string

	// PlayerCommand overrides external-player autodetection. Only used
	// when the in-process mixer is unavailable.
	PlayerCommand []string

	// ForceFilePlayback skips the mixer and always plays through an
	// external player command.
	ForceFilePlayback bool

	// CacheDir enables the synthesis cache when non-empty.
	CacheDir string

	EngineConfig engine.Config
}

// Resolve builds a Reader from options. It returns
// engine.ErrDependencyMissing when no playback backend exists at all.
func Resolve(opts Options) (*Reader, error) {
	eng, err := resolveEngine(opts)
	if err != nil {
		return nil, err
	}

	// The external-process shape plays through the TTS program itself;
	// no sequencer or cache is involved.
	if eng.Kind() == engine.KindExternal {
		return New(eng, nil, nil, opts.EngineConfig), nil
	}

	seq, err := resolveSequencer(opts)
	if err != nil {
		return nil, err
	}

	var c *cache.Cache
	if opts.CacheDir != "" {
		c, err = cache.New(opts.CacheDir)
		if err != nil {
			log.Warn("synthesis cache disabled", "error", err)
			c = nil
		}
	}

	return New(eng, seq, c, opts.EngineConfig), nil
}

// resolveEngine picks the TTS backend shape from options.
func resolveEngine(opts Options) (engine.Engine, error) {
	if opts.External {
		return engine.NewExternalProcess(opts.ExternalCommand, opts.EngineConfig), nil
	}

	switch opts.Engine {
	case "piper", "":
		if opts.Streaming {
			return piper.NewStream(opts.EngineConfig), nil
		}
		return piper.New(opts.EngineConfig), nil
	case "gtts":
		return gtts.New(opts.EngineConfig), nil
	case "mock":
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", engine.ErrBackendUnavailable, opts.Engine)
	}
}

// resolveSequencer picks the playback backend: the in-process mixer when
// the audio device comes up, otherwise a blocking external player
// command. The choice is final for the whole run.
func resolveSequencer(opts Options) (*audio.Sequencer, error) {
	if !opts.ForceFilePlayback {
		ctx, err := audio.NewOtoContext(opts.EngineConfig.SampleRate)
		if err == nil {
			log.Debug("playback backend selected", "backend", audio.BackendMixer)
			return audio.NewMixerSequencer(ctx), nil
		}
		log.Warn("in-process mixer unavailable, falling back to external player", "error", err)
	}

	playerCmd := opts.PlayerCommand
	if len(playerCmd) == 0 {
		playerCmd = audio.ResolvePlayerCommand()
	}
	if len(playerCmd) == 0 {
		return nil, fmt.Errorf("%w: no audio mixer and no external player command found",
			engine.ErrDependencyMissing)
	}

	log.Debug("playback backend selected", "backend", audio.BackendExternal, "player", playerCmd[0])
	return audio.NewExternalSequencer(playerCmd), nil
}
