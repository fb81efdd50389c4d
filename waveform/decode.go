package waveform

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// ErrUnsupportedFormat is returned for sources that are neither WAV nor MP3.
var ErrUnsupportedFormat = errors.New("waveform: unsupported audio format")

// Format identifies an encoded audio container.
type Format int

const (
	FormatUnknown Format = iota
	FormatWAV
	FormatMP3
)

func (f Format) String() string {
	switch f {
	case FormatWAV:
		return "wav"
	case FormatMP3:
		return "mp3"
	default:
		return "unknown"
	}
}

// FormatFromPath guesses the format from the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return FormatWAV
	case ".mp3":
		return FormatMP3
	default:
		return FormatUnknown
	}
}

// Audio is decoded PCM in planar float64 form, nominally in [-1, 1].
type Audio struct {
	Channels   [][]float64
	SampleRate int
}

// Frames returns the length of the first channel.
func (a Audio) Frames() int {
	if len(a.Channels) == 0 {
		return 0
	}
	return len(a.Channels[0])
}

// Duration returns the length in seconds.
func (a Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(a.Frames()) / float64(a.SampleRate)
}

// DecodeFile decodes the WAV or MP3 file at path.
func DecodeFile(path string) (Audio, error) {
	format := FormatFromPath(path)
	if format == FormatUnknown {
		return Audio{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return Audio{}, fmt.Errorf("waveform: %w", err)
	}
	defer f.Close()

	a, err := Decode(f, format)
	if err != nil {
		return Audio{}, fmt.Errorf("%w (%s)", err, path)
	}
	return a, nil
}

// Decode reads a complete WAV or MP3 stream.
func Decode(r io.ReadSeeker, format Format) (Audio, error) {
	switch format {
	case FormatWAV:
		return decodeWAV(r)
	case FormatMP3:
		return decodeMP3(r)
	default:
		return Audio{}, ErrUnsupportedFormat
	}
}

func decodeWAV(r io.ReadSeeker) (Audio, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return Audio{}, fmt.Errorf("%w: invalid WAV data", ErrUnsupportedFormat)
	}
	if err := decoder.FwdToPCM(); err != nil {
		return Audio{}, fmt.Errorf("waveform: reading WAV header: %w", err)
	}

	format := decoder.Format()
	bitDepth := int(decoder.SampleBitDepth())
	if bitDepth == 0 || format == nil || format.NumChannels == 0 {
		return Audio{}, fmt.Errorf("%w: unknown WAV sample layout", ErrUnsupportedFormat)
	}

	bytesPerSample := (bitDepth-1)/8 + 1
	samples := int(decoder.PCMLen()) / bytesPerSample

	buf := &audio.IntBuffer{
		Format:         format,
		Data:           make([]int, samples),
		SourceBitDepth: bitDepth,
	}
	n, err := decoder.PCMBuffer(buf)
	if err != nil {
		return Audio{}, fmt.Errorf("waveform: decoding WAV: %w", err)
	}

	scale := 1 / math.Pow(2, float64(bitDepth-1))
	return deinterleave(format.NumChannels, format.SampleRate, n, func(i int) float64 {
		return float64(buf.Data[i]) * scale
	}), nil
}

func decodeMP3(r io.ReadSeeker) (Audio, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return Audio{}, fmt.Errorf("waveform: decoding MP3: %w", err)
	}

	// go-mp3 always produces 16-bit little-endian stereo.
	const channels, bytesPerSample = 2, 2

	var raw []byte
	if n := decoder.Length(); n > 0 {
		raw = make([]byte, n)
		read, err := io.ReadFull(decoder, raw)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
			return Audio{}, fmt.Errorf("waveform: decoding MP3: %w", err)
		}
		raw = raw[:read]
	} else if raw, err = io.ReadAll(decoder); err != nil {
		return Audio{}, fmt.Errorf("waveform: decoding MP3: %w", err)
	}

	return deinterleave(channels, decoder.SampleRate(), len(raw)/bytesPerSample, func(i int) float64 {
		return float64(int16(binary.LittleEndian.Uint16(raw[2*i:]))) / 32768
	}), nil
}

func deinterleave(channels, sampleRate, samples int, at func(int) float64) Audio {
	frames := samples / channels

	out := Audio{Channels: make([][]float64, channels), SampleRate: sampleRate}
	for ch := range out.Channels {
		data := make([]float64, frames)
		for i := range data {
			data[i] = at(i*channels + ch)
		}
		out.Channels[ch] = data
	}
	return out
}

// WriteWAV encodes a as 16-bit PCM WAV.
func WriteWAV(w io.WriteSeeker, a Audio) error {
	channels := len(a.Channels)
	if channels == 0 || a.SampleRate <= 0 {
		return errors.New("waveform: nothing to encode")
	}

	frames := a.Frames()
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  a.SampleRate,
		},
		Data:           make([]int, frames*channels),
		SourceBitDepth: 16,
	}
	for ch, data := range a.Channels {
		for i := range frames {
			v := 0.0
			if i < len(data) {
				v = max(-1, min(1, data[i]))
			}
			buf.Data[i*channels+ch] = int(math.Round(v * 32767))
		}
	}

	enc := wav.NewEncoder(w, a.SampleRate, 16, channels, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("waveform: encoding WAV: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("waveform: finishing WAV: %w", err)
	}
	return nil
}
