package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChunkProbe issues a single multipart POST to the STT service's chunk
// endpoint and inspects the response for language auto-detection. One
// request per call, no retries.
type ChunkProbe struct {
	baseURL        string
	timeout        time.Duration
	language       string
	targetLanguage string
	client         *http.Client
}

// ProbeResult is the parsed outcome of one chunk upload. Body is only set
// for HTTP 200 responses; the schema is otherwise treated as opaque.
type ProbeResult struct {
	StatusCode       int
	RawBody          []byte
	Body             map[string]any
	DetectedLanguage string
	HasDetection     bool
}

var errNoDetection = errors.New("detected_language missing in response")

func NewChunkProbe(cfg ServiceConfig) *ChunkProbe {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChunkProbe{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		timeout:        timeout,
		language:       cfg.Language,
		targetLanguage: cfg.TargetLanguage,
		client:         &http.Client{Timeout: timeout},
	}
}

// Send posts one chunk. Transport-level failures (refused, timeout, DNS)
// come back as an error with a nil result; HTTP-level failures come back
// inside the result.
func (p *ChunkProbe) Send(ctx context.Context, sessionID string, chunkID int, payload Payload) (*ProbeResult, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.WriteField("session_id", sessionID)
	w.WriteField("chunk_id", fmt.Sprintf("%d", chunkID))
	// Omitted unless configured: their absence is what makes the service
	// exercise auto-detection.
	if p.language != "" {
		w.WriteField("language", p.language)
	}
	if p.targetLanguage != "" {
		w.WriteField("target_language", p.targetLanguage)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, payload.Filename))
	h.Set("Content-Type", payload.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(payload.Data); err != nil {
		return nil, fmt.Errorf("write payload: %w", err)
	}
	w.Close()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chunk/", &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send chunk: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	res := &ProbeResult{StatusCode: resp.StatusCode, RawBody: raw}
	if resp.StatusCode != http.StatusOK {
		return res, nil
	}

	if err := json.Unmarshal(raw, &res.Body); err != nil {
		return res, fmt.Errorf("decode response: %w", err)
	}
	if v, ok := res.Body["detected_language"]; ok {
		res.HasDetection = true
		res.DetectedLanguage = fmt.Sprintf("%v", v)
	}
	return res, nil
}

// runProbe performs the one-shot chunk probe and prints a report. Every
// failure path prints and returns; the returned error only matters to
// strict mode.
func runProbe(cfg *Config, payload Payload) error {
	sessionID := cfg.Probe.SessionID
	if sessionID == "" {
		sessionID = "probe-" + uuid.NewString()
	}

	probe := NewChunkProbe(cfg.Service)

	log.Printf("Probing %s/chunk/ (timeout %s)", probe.baseURL, probe.timeout)
	log.Printf("session_id=%s chunk_id=%d file=%s (%s, %d bytes)",
		sessionID, cfg.Probe.ChunkID, payload.Filename, payload.ContentType, len(payload.Data))
	if len(payload.PCM) > 0 {
		d := pcmDuration(len(payload.PCM), payload.SampleRate)
		log.Printf("payload audio: %.1fs, rms=%.0f", d.Seconds(), rmsEnergy(payload.PCM))
	}

	res, err := probe.Send(context.Background(), sessionID, cfg.Probe.ChunkID, payload)
	switch {
	case err != nil && res == nil:
		fmt.Printf("Connection error: %v\n", err)
		return err
	case err != nil:
		fmt.Printf("Bad response body: %v\n", err)
		fmt.Println(string(res.RawBody))
		return err
	case res.StatusCode != http.StatusOK:
		fmt.Printf("Request failed with status %d\n", res.StatusCode)
		fmt.Println(string(res.RawBody))
		return fmt.Errorf("status %d", res.StatusCode)
	}

	pretty, _ := json.MarshalIndent(res.Body, "", "  ")
	fmt.Println("STT service response:")
	fmt.Println(string(pretty))

	if res.HasDetection {
		fmt.Printf("Language detection working, detected: %s\n", res.DetectedLanguage)
		return nil
	}
	fmt.Println("Warning: detected_language field missing in response")
	return errNoDetection
}
