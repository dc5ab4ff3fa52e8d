package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"
)

// chunkResponse mirrors the transcription service's chunk schema.
// DetectedLanguage is omitted when the client pinned a language, so the
// probe's missing-field path can be exercised too.
type chunkResponse struct {
	SessionID        string  `json:"session_id"`
	ChunkID          int     `json:"chunk_id"`
	RawText          string  `json:"raw_text"`
	Translation      string  `json:"translation"`
	ProcessingTimeS  float64 `json:"processing_time_s"`
	DetectedLanguage string  `json:"detected_language,omitempty"`
}

// mockChunkHandler stands in for the STT service: it accepts the multipart
// chunk upload and fakes a transcription. No language field in the form
// means "auto-detect"; an explicit language suppresses detection.
type mockChunkHandler struct {
	detectedLanguage string
}

func (h *mockChunkHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "no file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, _ := io.ReadAll(file)

	chunkID, _ := strconv.Atoi(r.FormValue("chunk_id"))
	lang := r.FormValue("language")

	resp := chunkResponse{
		SessionID:       r.FormValue("session_id"),
		ChunkID:         chunkID,
		RawText:         fmt.Sprintf("[mock transcription of %d bytes from %s]", len(data), header.Filename),
		ProcessingTimeS: time.Since(start).Seconds(),
	}
	if lang == "" {
		resp.DetectedLanguage = h.detectedLanguage
	}

	log.Printf("chunk: session=%s chunk=%d file=%s (%d bytes) language=%q",
		resp.SessionID, chunkID, header.Filename, len(data), lang)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// runMock serves a local stand-in STT service so the probe has something
// to hit without the real deployment running.
func runMock(addr, detectedLanguage string) {
	mux := http.NewServeMux()
	mux.Handle("/chunk/", &mockChunkHandler{detectedLanguage: detectedLanguage})

	log.Printf("Mock STT server on %s (detected_language=%s)", addr, detectedLanguage)
	log.Fatal(http.ListenAndServe(addr, mux))
}
