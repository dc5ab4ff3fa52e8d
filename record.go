package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"
	"time"
)

// recordPayload captures microphone audio as PCM s16le via pw-record or
// arecord and wraps it as a WAV chunk payload. No CGo needed — we pipe
// from a subprocess.
func recordPayload(cfg AudioConfig, seconds int) (Payload, error) {
	if seconds <= 0 {
		seconds = 5
	}

	// Guard timeout: ReadFull returns as soon as we have enough samples.
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(seconds)*time.Second+5*time.Second)
	defer cancel()

	args := recorderArgs(cfg)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Payload{}, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return Payload{}, fmt.Errorf("start recorder: %w", err)
	}

	log.Printf("Recording %ds (%s, %d Hz)...", seconds, args[0], cfg.SampleRate)

	pcm := make([]byte, cfg.SampleRate*2*seconds)
	n, err := io.ReadFull(stdout, pcm)
	cancel()
	cmd.Wait()
	if n == 0 {
		if err != nil {
			return Payload{}, fmt.Errorf("record: %w", err)
		}
		return Payload{}, fmt.Errorf("record: no audio captured")
	}
	pcm = pcm[:n]

	return Payload{
		Filename:    "live_audio.wav",
		ContentType: "audio/wav",
		Data:        pcmToWAV(pcm, cfg.SampleRate),
		PCM:         pcm,
		SampleRate:  cfg.SampleRate,
	}, nil
}

func recorderArgs(cfg AudioConfig) []string {
	// Prefer pw-record (PipeWire), fall back to arecord (ALSA)
	if _, err := exec.LookPath("pw-record"); err == nil {
		args := []string{
			"pw-record",
			"--format=s16",
			fmt.Sprintf("--rate=%d", cfg.SampleRate),
			"--channels=1",
			"-", // stdout
		}
		if cfg.Device != "" {
			args = append([]string{args[0], "--target=" + cfg.Device}, args[1:]...)
		}
		return args
	}

	// arecord fallback
	args := []string{
		"arecord",
		"-f", "S16_LE",
		"-r", fmt.Sprintf("%d", cfg.SampleRate),
		"-c", "1",
		"-t", "raw",
		"-q", // quiet
		"-",  // stdout
	}
	if cfg.Device != "" {
		args = append([]string{args[0], "-D", cfg.Device}, args[1:]...)
	}
	return args
}
