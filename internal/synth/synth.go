// Package synth provides the reference audio producer: a client for a
// text-to-speech HTTP endpoint. The prompt and voice semantics belong to the
// endpoint; this package only moves bytes.
package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mzahid/tartil/internal/cache"
	"github.com/mzahid/tartil/internal/constants"
	"github.com/mzahid/tartil/internal/httpclient"
	"github.com/mzahid/tartil/internal/logger"
)

type Synthesizer struct {
	endpoint string
	apiKey   string
	voice    string
	http     *httpclient.Client
	log      *logger.Logger
}

func NewSynthesizer(endpoint, apiKey, voice string, hc *httpclient.Client, log *logger.Logger) *Synthesizer {
	if hc == nil {
		hc = httpclient.NewClient(nil, 0)
	}
	return &Synthesizer{
		endpoint: endpoint,
		apiKey:   apiKey,
		voice:    voice,
		http:     hc,
		log:      log.WithComponent("synth"),
	}
}

type synthRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type synthResponse struct {
	Audio string `json:"audio"` // base64-encoded MP3
}

// Producer returns a cache.Producer that synthesizes the given text on
// invocation. It is only called on cache miss.
func (s *Synthesizer) Producer(text string) cache.Producer {
	return func(ctx context.Context) (string, error) {
		return s.synthesize(ctx, text)
	}
}

func (s *Synthesizer) synthesize(ctx context.Context, text string) (string, error) {
	if s.endpoint == "" {
		return "", fmt.Errorf("speech synthesis not configured")
	}

	body, err := json.Marshal(synthRequest{Text: text, Voice: s.voice})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", constants.MimeTypeJSON)
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.http.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // deferred cleanup

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("synthesis request failed: %s", resp.Status)
	}

	var out synthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode synthesis response: %w", err)
	}
	if out.Audio == "" {
		return "", fmt.Errorf("synthesis response contained no audio")
	}
	return out.Audio, nil
}
