package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

func writePCMFile(t *testing.T, nBytes int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.pcm")
	if err := os.WriteFile(path, make([]byte, nBytes), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func realtimeConfig(srv *httptest.Server) *Config {
	cfg := defaultConfig()
	cfg.Realtime.URL = "ws" + strings.TrimPrefix(srv.URL, "http")
	cfg.Service.TimeoutSeconds = 5
	return cfg
}

func TestRunRealtime_ReceivesDeltas(t *testing.T) {
	var gotAuth, gotModel, gotEncoding string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		defer conn.CloseNow()
		ctx := r.Context()

		var setup wsSessionUpdate
		if err := wsjson.Read(ctx, conn, &setup); err != nil {
			t.Errorf("read session.update: %v", err)
			return
		}
		if setup.Type != "session.update" {
			t.Errorf("first message type = %q, want session.update", setup.Type)
		}
		gotModel = setup.Session.Model
		gotEncoding = setup.Session.InputFmt.Encoding

		// Drain one audio append, then emit a transcription and hang up.
		var app wsAudioAppend
		if err := wsjson.Read(ctx, conn, &app); err != nil {
			t.Errorf("read append: %v", err)
			return
		}
		if app.Type != "input_audio_buffer.append" || app.Audio == "" {
			t.Errorf("append = %+v", app)
		}

		wsjson.Write(ctx, conn, wsEvent{Type: "transcription.text.delta", Text: "hello "})
		wsjson.Write(ctx, conn, wsEvent{Type: "transcription.text.delta", Text: "world"})
		conn.Close(websocket.StatusNormalClosure, "")
	}))
	defer srv.Close()

	cfg := realtimeConfig(srv)
	cfg.Realtime.APIKey = "k-123"

	if err := runRealtime(cfg, writePCMFile(t, 1000)); err != nil {
		t.Fatalf("runRealtime() error = %v", err)
	}
	if gotAuth != "Bearer k-123" {
		t.Errorf("Authorization = %q, want Bearer k-123", gotAuth)
	}
	if gotModel != cfg.Realtime.Model {
		t.Errorf("model = %q, want %q", gotModel, cfg.Realtime.Model)
	}
	if gotEncoding != "pcm_s16le" {
		t.Errorf("encoding = %q, want pcm_s16le", gotEncoding)
	}
}

func TestRunRealtime_NoDeltasIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		var setup wsSessionUpdate
		wsjson.Read(r.Context(), conn, &setup)
		conn.Close(websocket.StatusNormalClosure, "")
	}))
	defer srv.Close()

	if err := runRealtime(realtimeConfig(srv), writePCMFile(t, 1000)); err == nil {
		t.Error("runRealtime() error = nil, want no-deltas failure")
	}
}

func TestRunRealtime_DialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	if err := runRealtime(realtimeConfig(srv), writePCMFile(t, 1000)); err == nil {
		t.Error("runRealtime() error = nil, want dial error")
	}
}

func TestRunRealtime_MissingFile(t *testing.T) {
	cfg := defaultConfig()
	if err := runRealtime(cfg, "/nonexistent/audio.pcm"); err == nil {
		t.Error("runRealtime() error = nil, want read error")
	}
}
