package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// dummyPayload is the placeholder the original hand-run check uploaded.
// Services that actually decode audio will reject it; the upload path and
// the language handling still get exercised.
var dummyPayload = []byte("dummy audio data")

// Payload is one file part for the chunk upload. PCM holds the raw samples
// behind Data when we synthesized or recorded them ourselves.
type Payload struct {
	Filename    string
	ContentType string
	Data        []byte
	PCM         []byte
	SampleRate  int
}

func buildPayload(cfg AudioConfig, filename, fromFile string) (Payload, error) {
	if fromFile != "" {
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return Payload{}, fmt.Errorf("read %s: %w", fromFile, err)
		}
		return Payload{
			Filename:    filepath.Base(fromFile),
			ContentType: contentTypeFor(fromFile),
			Data:        data,
		}, nil
	}

	switch cfg.Payload {
	case "", "dummy":
		return Payload{
			Filename:    filename,
			ContentType: "audio/ogg",
			Data:        dummyPayload,
		}, nil
	case "tone":
		pcm := tonePCM(cfg.SampleRate, cfg.ToneHz, cfg.ToneSeconds)
		return Payload{
			Filename:    replaceExt(filename, ".wav"),
			ContentType: "audio/wav",
			Data:        pcmToWAV(pcm, cfg.SampleRate),
			PCM:         pcm,
			SampleRate:  cfg.SampleRate,
		}, nil
	default:
		return Payload{}, fmt.Errorf("unknown payload kind: %q", cfg.Payload)
	}
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".pcm", ".raw":
		return "application/octet-stream"
	default:
		return "audio/ogg"
	}
}

func replaceExt(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

// tonePCM synthesizes mono s16le sine audio at 30% full scale.
func tonePCM(sampleRate, hz, seconds int) []byte {
	n := sampleRate * seconds
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		s := int16(0.3 * math.MaxInt16 * math.Sin(2*math.Pi*float64(hz)*float64(i)/float64(sampleRate)))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// pcmToWAV wraps raw s16le mono samples in a minimal RIFF/WAVE container.
func pcmToWAV(pcm []byte, sampleRate int) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	out := make([]byte, 44+len(pcm))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+len(pcm)))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], channels)
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], bitsPerSample)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(pcm)))
	copy(out[44:], pcm)
	return out
}

// pcmDuration reports the play time of s16le mono audio.
func pcmDuration(nBytes, sampleRate int) time.Duration {
	samples := nBytes / 2
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}

// rmsEnergy computes the root-mean-square energy of PCM s16le audio.
func rmsEnergy(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sample := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		sum += float64(sample) * float64(sample)
	}
	return math.Sqrt(sum / float64(n))
}
