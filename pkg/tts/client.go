// Package tts is a minimal client for a Google-style text-to-speech
// synthesis endpoint. The API returns base64-encoded audio which the client
// decodes before handing back.
package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"uk.co.dudmesh.pressroom/internal/model"
)

type Client struct {
	url          string
	apiKey       string
	voiceName    string
	languageCode string
	httpClient   *http.Client
}

func New(url, apiKey, voiceName, languageCode string) *Client {
	return &Client{
		url:          url,
		apiKey:       apiKey,
		voiceName:    voiceName,
		languageCode: languageCode,
		httpClient:   http.DefaultClient,
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audioEncoding"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize renders text to MP3 bytes. A missing API key is a
// configuration error, not an upstream one.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if !c.Configured() {
		return nil, model.ErrorTTSNotConfigured
	}

	reqBody := synthesizeRequest{}
	reqBody.Input.Text = text
	reqBody.Voice.LanguageCode = c.languageCode
	reqBody.Voice.Name = c.voiceName
	reqBody.AudioConfig.AudioEncoding = "MP3"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encoding synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"?key="+c.apiKey, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling synthesis API: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("synthesis API returned %s", res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading synthesis response: %w", err)
	}

	var parsed synthesizeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing synthesis response: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(parsed.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decoding audio content: %w", err)
	}

	return audio, nil
}
