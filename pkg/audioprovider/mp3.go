// Package audioprovider adapts on-disk audio files into spod.Provider
// snapshot sources: each PCM sample becomes one scalar (shape []int{1})
// snapshot, sampled at the file's native rate.
package audioprovider

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/go-mp3"
)

// Additional samples go-mp3 produces compared to a browser's decoder.
// Measured: browser first transient at 48446, go-mp3 at 50735; the LAME
// header said 1365, so go-mp3 adds 50735-48446-1365 = 924 samples.
const goMP3DecoderDelay = 924

// defaultEncoderDelay is used when no LAME/Xing header delay is found.
const defaultEncoderDelay = 576

// MP3Provider is a spod.Provider over a decoded mono MP3 file. It
// satisfies Shape/Count/IsComplex/Snapshot directly over an eagerly
// decoded sample buffer, the same shape the solver would see from an
// EagerProvider.
type MP3Provider struct {
	samples    []float32
	sampleRate int
}

// Load decodes path (currently only ".mp3" is supported) to mono float32
// samples, trimming the combined LAME encoder and go-mp3 decoder delay so
// the first snapshot lines up with what a browser decoder would play.
func Load(path string) (*MP3Provider, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".mp3" {
		return nil, fmt.Errorf("audioprovider: unsupported audio format: %s", ext)
	}
	samples, rate, err := loadMP3Mono(path)
	if err != nil {
		return nil, err
	}
	return &MP3Provider{samples: samples, sampleRate: rate}, nil
}

// SampleRate returns the file's native sample rate, in Hz.
func (p *MP3Provider) SampleRate() int { return p.sampleRate }

// Dt returns the provider's native timestep 1/SampleRate, the natural
// dt override for a spod.Options built from this provider.
func (p *MP3Provider) Dt() float64 { return 1 / float64(p.sampleRate) }

func (p *MP3Provider) Shape() []int { return []int{1} }
func (p *MP3Provider) Count() int   { return len(p.samples) }
func (p *MP3Provider) IsComplex() bool { return false }

func (p *MP3Provider) Snapshot(i int) ([]complex128, error) {
	if i < 0 || i >= len(p.samples) {
		return nil, fmt.Errorf("audioprovider: sample index %d out of range [0,%d)", i, len(p.samples))
	}
	return []complex128{complex(float64(p.samples[i]), 0)}, nil
}

func readMP3Delay(path string) int {
	return readLAMEEncoderDelay(path) + goMP3DecoderDelay
}

// readLAMEEncoderDelay reads the encoder delay from the Xing/LAME header,
// if present in the first 4KB of the file.
func readLAMEEncoderDelay(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return defaultEncoderDelay
	}
	defer f.Close()

	buf := make([]byte, 4096)
	n, err := f.Read(buf)
	if err != nil || n < 200 {
		return defaultEncoderDelay
	}
	buf = buf[:n]

	lameIdx := bytes.Index(buf, []byte("LAME"))
	if lameIdx == -1 {
		return defaultEncoderDelay
	}

	// LAME header structure: at offset 21 from "LAME" sits a 3-byte field
	// holding encoder delay (12 bits) and padding (12 bits).
	delayOffset := lameIdx + 21
	if delayOffset+3 > len(buf) {
		return defaultEncoderDelay
	}
	b := buf[delayOffset : delayOffset+3]
	delay := (int(b[0]) << 4) | (int(b[1]) >> 4)
	if delay < 0 || delay > 4096 {
		return defaultEncoderDelay
	}
	return delay
}

// loadMP3Mono decodes path to mono float32 samples in [-1, 1].
func loadMP3Mono(path string) ([]float32, int, error) {
	totalDelay := readMP3Delay(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("audioprovider: open file: %w", err)
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, 0, fmt.Errorf("audioprovider: create MP3 decoder: %w", err)
	}
	sampleRate := decoder.SampleRate()

	pcmData, err := io.ReadAll(decoder)
	if err != nil {
		return nil, 0, fmt.Errorf("audioprovider: decode MP3: %w", err)
	}

	// 16-bit signed stereo, 4 bytes per sample pair.
	numSamplePairs := len(pcmData) / 4
	samples := make([]float32, numSamplePairs)
	for i := 0; i < numSamplePairs; i++ {
		offset := i * 4
		left := int16(binary.LittleEndian.Uint16(pcmData[offset:]))
		right := int16(binary.LittleEndian.Uint16(pcmData[offset+2:]))
		mono := (float32(left) + float32(right)) / 2.0
		samples[i] = mono / 32768.0
	}

	if len(samples) > totalDelay {
		samples = samples[totalDelay:]
	}
	return samples, sampleRate, nil
}
