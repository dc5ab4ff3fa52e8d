package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Realtime wire protocol, shared by Mistral Realtime and local vLLM
// deployments.

type wsSessionUpdate struct {
	Type    string    `json:"type"`
	Session wsSession `json:"session"`
}

type wsSession struct {
	Model       string        `json:"model"`
	InputFmt    wsAudioFormat `json:"input_audio_format"`
	Temperature float64       `json:"temperature"`
}

type wsAudioFormat struct {
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}

type wsAudioAppend struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

type wsEvent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// runRealtime streams a PCM s16le file to the realtime STT websocket
// endpoint and prints transcription deltas as they arrive. Like the chunk
// probe, failures print and return; strict mode decides the exit code.
func runRealtime(cfg *Config, pcmFile string) error {
	data, err := os.ReadFile(pcmFile)
	if err != nil {
		fmt.Printf("Cannot read %s: %v\n", pcmFile, err)
		return err
	}

	sampleRate := cfg.Audio.SampleRate
	duration := pcmDuration(len(data), sampleRate)
	log.Printf("Audio: %s (%.1fs, %d bytes)", pcmFile, duration.Seconds(), len(data))

	timeout := time.Duration(cfg.Service.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), duration+timeout)
	defer cancel()

	opts := &websocket.DialOptions{}
	if cfg.Realtime.APIKey != "" {
		opts.HTTPHeader = http.Header{
			"Authorization": {"Bearer " + cfg.Realtime.APIKey},
		}
	}

	conn, _, err := websocket.Dial(ctx, cfg.Realtime.URL, opts)
	if err != nil {
		fmt.Printf("Connection error: %v\n", err)
		return fmt.Errorf("ws dial %s: %w", cfg.Realtime.URL, err)
	}
	defer conn.CloseNow()

	// Increase read limit for large responses
	conn.SetReadLimit(10 * 1024 * 1024)

	err = wsjson.Write(ctx, conn, wsSessionUpdate{
		Type: "session.update",
		Session: wsSession{
			Model:       cfg.Realtime.Model,
			InputFmt:    wsAudioFormat{Encoding: "pcm_s16le", SampleRate: sampleRate},
			Temperature: 0.0,
		},
	})
	if err != nil {
		fmt.Printf("Session setup failed: %v\n", err)
		return fmt.Errorf("ws session update: %w", err)
	}
	log.Printf("Connected to %s (model=%s)", cfg.Realtime.URL, cfg.Realtime.Model)

	// Stream the file in paced chunks so the server sees realtime-ish input.
	chunkBytes := sampleRate * 2 * cfg.Audio.ChunkMs / 1000
	go func() {
		for i := 0; i < len(data); i += chunkBytes {
			end := i + chunkBytes
			if end > len(data) {
				end = len(data)
			}
			msg := wsAudioAppend{
				Type:  "input_audio_buffer.append",
				Audio: base64.StdEncoding.EncodeToString(data[i:end]),
			}
			if err := wsjson.Write(ctx, conn, msg); err != nil {
				if ctx.Err() == nil {
					log.Printf("ws write: %v", err)
				}
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(cfg.Audio.ChunkMs) * time.Millisecond / 4):
			}
		}
		log.Println("All audio sent")
	}()

	start := time.Now()
	deltas := 0
	for {
		var ev wsEvent
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			break // server closed, or overall deadline hit
		}
		switch ev.Type {
		case "transcription.text.delta":
			if ev.Text != "" {
				elapsed := time.Since(start).Truncate(time.Millisecond)
				fmt.Printf("[%s] %s", elapsed, ev.Text)
				deltas++
			}
		case "error":
			log.Printf("server error event: %+v", ev)
		}
	}
	fmt.Println()

	if deltas == 0 {
		fmt.Println("No transcription received")
		return fmt.Errorf("no transcription deltas")
	}
	log.Printf("Received %d deltas in %s", deltas, time.Since(start).Truncate(time.Millisecond))
	return nil
}
