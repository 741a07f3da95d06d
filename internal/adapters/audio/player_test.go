package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marianecozta/Pomodoro/internal/config"
	"github.com/marianecozta/Pomodoro/internal/domain"
)

type recorder struct {
	mu         sync.Mutex
	beeps      []float64
	played     int
	inits      int
	beepErr    error
	speakerErr error
}

func newTestPlayer(cfg *config.SoundConfig, r *recorder) *Player {
	p := New(cfg, nil)
	p.beep = func(freq float64, ms int) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.beeps = append(r.beeps, freq)
		return r.beepErr
	}
	p.initSpeaker = func(sr beep.SampleRate, bufferSize int) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.inits++
		return r.speakerErr
	}
	p.play = func(s beep.Streamer) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.played++
	}
	return p
}

func writeWAV(t *testing.T, dir, name string, rate beep.SampleRate) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	format := beep.Format{SampleRate: rate, NumChannels: 1, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Silence(rate.N(50_000_000)), format))
	return path
}

func TestPlayer_FallsBackToBeep(t *testing.T) {
	r := &recorder{}
	p := newTestPlayer(&config.SoundConfig{Enabled: true}, r)

	require.NoError(t, p.Play(context.Background(), domain.CueStart))
	require.NoError(t, p.Play(context.Background(), domain.CueTaskComplete))

	assert.Equal(t, []float64{880, 1046.5}, r.beeps)
	assert.Zero(t, r.played)
	assert.Zero(t, r.inits, "speaker is only initialised for sound files")
}

func TestPlayer_PlaysDecodedFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.SoundConfig{
		Enabled: true,
		End:     writeWAV(t, dir, "end.wav", 44100),
		Start:   writeWAV(t, dir, "start.wav", 22050),
	}
	r := &recorder{}
	p := newTestPlayer(cfg, r)

	require.NoError(t, p.Play(context.Background(), domain.CueEnd))
	require.NoError(t, p.Play(context.Background(), domain.CueStart))
	require.NoError(t, p.Play(context.Background(), domain.CueTaskComplete))

	assert.Equal(t, 2, r.played)
	assert.Equal(t, 1, r.inits)
	assert.Equal(t, []float64{1046.5}, r.beeps)
}

func TestPlayer_BadFileUsesBeep(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "end.ogg")
	require.NoError(t, os.WriteFile(bogus, []byte("not audio"), 0644))

	r := &recorder{}
	p := newTestPlayer(&config.SoundConfig{Enabled: true, End: bogus}, r)

	require.NoError(t, p.Play(context.Background(), domain.CueEnd))
	assert.Equal(t, []float64{660}, r.beeps)
}

func TestPlayer_SpeakerFailureUsesBeep(t *testing.T) {
	dir := t.TempDir()
	r := &recorder{speakerErr: errors.New("no device")}
	p := newTestPlayer(&config.SoundConfig{Enabled: true, End: writeWAV(t, dir, "end.wav", 8000)}, r)

	require.NoError(t, p.Play(context.Background(), domain.CueEnd))
	assert.Zero(t, r.played)
	assert.Equal(t, []float64{660}, r.beeps)
}

func TestPlayer_Disabled(t *testing.T) {
	r := &recorder{}
	p := newTestPlayer(&config.SoundConfig{Enabled: false}, r)

	require.NoError(t, p.Play(context.Background(), domain.CueEnd))
	assert.Empty(t, r.beeps)

	require.NoError(t, New(nil, nil).Play(context.Background(), domain.CueEnd))
}

func TestPlayer_Errors(t *testing.T) {
	r := &recorder{beepErr: errors.New("no pc speaker")}
	p := newTestPlayer(&config.SoundConfig{Enabled: true}, r)

	assert.Error(t, p.Play(context.Background(), domain.CueEnd))
	assert.Error(t, p.Play(context.Background(), domain.Cue("fanfare")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Play(ctx, domain.CueEnd), context.Canceled)
}

func TestDecodeFile_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cue.flac")
	require.NoError(t, os.WriteFile(path, []byte{0}, 0644))

	_, _, err := decodeFile(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
