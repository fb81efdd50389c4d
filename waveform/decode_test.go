package waveform

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatWAV, FormatFromPath("a/b/take.WAV"))
	assert.Equal(t, FormatMP3, FormatFromPath("song.mp3"))
	assert.Equal(t, FormatUnknown, FormatFromPath("notes.txt"))
	assert.Equal(t, "wav", FormatWAV.String())
	assert.Equal(t, "unknown", FormatUnknown.String())
}

func TestWAVRoundTrip(t *testing.T) {
	const sampleRate = 8000

	left := make([]float64, 800)
	right := make([]float64, 800)
	for i := range left {
		left[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/sampleRate)
		right[i] = -left[i]
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteWAV(f, Audio{Channels: [][]float64{left, right}, SampleRate: sampleRate}))
	require.NoError(t, f.Close())

	a, err := DecodeFile(path)
	require.NoError(t, err)

	assert.Equal(t, sampleRate, a.SampleRate)
	require.Len(t, a.Channels, 2)
	assert.Equal(t, 800, a.Frames())
	assert.InDelta(t, 0.1, a.Duration(), 1e-12)
	assert.InDeltaSlice(t, left, a.Channels[0], 1e-4)
	assert.InDeltaSlice(t, right, a.Channels[1], 1e-4)
}

func TestWriteWAVRejectsEmptyAudio(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "empty.wav"))
	require.NoError(t, err)
	defer f.Close()

	assert.Error(t, WriteWAV(f, Audio{}))
}

func TestDecodeErrors(t *testing.T) {
	_, err := DecodeFile("cover.png")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = DecodeFile(filepath.Join(t.TempDir(), "missing.wav"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Decode(bytes.NewReader([]byte("definitely not RIFF data")), FormatWAV)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Decode(bytes.NewReader(nil), FormatMP3)
	assert.Error(t, err)

	_, err = Decode(bytes.NewReader(nil), FormatUnknown)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
