// Package audio plays the timer cues.
package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/gen2brain/beeep"
	hclog "github.com/hashicorp/go-hclog"

	"github.com/marianecozta/Pomodoro/internal/config"
	"github.com/marianecozta/Pomodoro/internal/domain"
	"github.com/marianecozta/Pomodoro/internal/ports"
)

// ErrUnsupportedFormat is returned for cue files that are neither wav nor mp3.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// tone is the fallback beep for a cue without a sound file.
type tone struct {
	freq float64
	ms   int
}

var fallbackTones = map[domain.Cue]tone{
	domain.CueStart:        {freq: 880, ms: 120},
	domain.CueEnd:          {freq: 660, ms: 450},
	domain.CueTaskComplete: {freq: 1046.5, ms: 90},
}

// speakerBufferSize is how much audio the speaker buffers ahead.
const speakerBufferSize = time.Second / 10

// Player implements ports.CuePlayer. Configured files are decoded once into
// memory on first use; cues without a usable file beep instead.
type Player struct {
	cfg    *config.SoundConfig
	logger hclog.Logger

	loadOnce sync.Once
	buffers  map[domain.Cue]*beep.Buffer

	// Replaced in tests.
	beep        func(freq float64, ms int) error
	initSpeaker func(sr beep.SampleRate, bufferSize int) error
	play        func(s beep.Streamer)
}

var _ ports.CuePlayer = (*Player)(nil)

// New creates a player for cfg. A nil cfg or cfg.Enabled == false mutes it.
func New(cfg *config.SoundConfig, logger hclog.Logger) *Player {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Player{
		cfg:         cfg,
		logger:      logger.Named("audio"),
		beep:        beeep.Beep,
		initSpeaker: speaker.Init,
		play:        func(s beep.Streamer) { speaker.Play(s) },
	}
}

// Play plays cue. It returns once playback is queued.
func (p *Player) Play(ctx context.Context, cue domain.Cue) error {
	if p.cfg == nil || !p.cfg.Enabled {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.loadOnce.Do(p.load)

	if buf, ok := p.buffers[cue]; ok {
		p.play(&effects.Volume{
			Streamer: buf.Streamer(0, buf.Len()),
			Base:     2,
			Volume:   p.cfg.Volume,
			Silent:   false,
		})
		return nil
	}

	t, ok := fallbackTones[cue]
	if !ok {
		return fmt.Errorf("unknown cue %q", cue)
	}
	if err := p.beep(t.freq, t.ms); err != nil {
		return fmt.Errorf("failed to beep for %s: %w", cue, err)
	}
	return nil
}

// load decodes every configured file. The speaker is initialised at the
// sample rate of the first file; later files are resampled to match.
// Files that fail to load are logged and left to the beep fallback.
func (p *Player) load() {
	p.buffers = make(map[domain.Cue]*beep.Buffer)

	var format beep.Format
	for _, cue := range []domain.Cue{domain.CueStart, domain.CueEnd, domain.CueTaskComplete} {
		path := p.cfg.PathFor(cue)
		if path == "" {
			continue
		}

		streamer, f, err := decodeFile(path)
		if err != nil {
			p.logger.Warn("cannot load cue file", "cue", cue, "path", path, "error", err)
			continue
		}

		if format.SampleRate == 0 {
			if err := p.initSpeaker(f.SampleRate, f.SampleRate.N(speakerBufferSize)); err != nil {
				streamer.Close()
				p.logger.Warn("speaker unavailable, using beeps", "error", err)
				p.buffers = map[domain.Cue]*beep.Buffer{}
				return
			}
			format = f
		}

		var src beep.Streamer = streamer
		if f.SampleRate != format.SampleRate {
			src = beep.Resample(4, f.SampleRate, format.SampleRate, streamer)
		}

		buffer := beep.NewBuffer(format)
		buffer.Append(src)
		streamer.Close()

		p.buffers[cue] = buffer
		p.logger.Debug("cue loaded", "cue", cue, "path", path, "samples", buffer.Len())
	}
}

// decodeFile opens path and picks a decoder by extension. The returned
// streamer owns the file.
func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return streamer, format, nil
}
