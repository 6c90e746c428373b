package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrTranscription = errors.New("transcription failed")

// AudioTranscriber converts a recorded question into text.
type AudioTranscriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, map[string]string, error)
}

type OpenAITranscriber struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

var _ AudioTranscriber = &OpenAITranscriber{}

func NewOpenAITranscriber(baseURL, apiKey, model string) *OpenAITranscriber {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "whisper-1"
	}
	return &OpenAITranscriber{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type transcriptionResponse struct {
	Text  string `json:"text"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, map[string]string, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".wav"
	}

	tmp, err := os.CreateTemp("", "docqa-audio-*"+ext)
	if err != nil {
		return "", nil, fmt.Errorf("%w: create temp file: %v", ErrTranscription, err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.Write(audio); err != nil {
		return "", nil, fmt.Errorf("%w: write temp file: %v", ErrTranscription, err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return "", nil, fmt.Errorf("%w: rewind temp file: %v", ErrTranscription, err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("model", t.Model); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	part, err := writer.CreateFormFile("file", filepath.Base(tmp.Name()))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	if _, err := io.Copy(part, tmp); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	if err := writer.Close(); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+t.APIKey)

	resp, err := t.Client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("%w: read response: %v", ErrTranscription, err)
	}

	var out transcriptionResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", nil, fmt.Errorf("%w: status %d: %s", ErrTranscription, resp.StatusCode, string(respBody))
	}
	if out.Error != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrTranscription, out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("%w: status %d", ErrTranscription, resp.StatusCode)
	}

	metadata := map[string]string{
		"provider": "openai",
		"filename": filename,
	}
	return strings.TrimSpace(out.Text), metadata, nil
}
