package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

const restBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type generateContentRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates,omitempty"`
}

type candidate struct {
	Content      *Content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
}

type apiErrorEnvelope struct {
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}

// synthesizeREST performs a one-shot generateContent call over HTTPS.
func (c *Client) synthesizeREST(ctx context.Context, req SynthesizeRequest) (*SynthesizeResult, error) {
	base := c.restEndpoint
	if base == "" {
		base = restBaseURL
	}
	url := fmt.Sprintf("%s/%s:generateContent", base, req.Model)

	body := generateContentRequest{
		Contents:         []Content{{Role: "user", Parts: []Part{{Text: req.Text}}}},
		GenerationConfig: audioConfig(req.Voice),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &GenerationError{Backend: BackendREST, Reason: "encoding request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &GenerationError{Backend: BackendREST, Reason: "building request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.APIKey)

	httpClient := c.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, &GenerationError{Backend: BackendREST, Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GenerationError{Backend: BackendREST, Reason: "reading response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		reason := fmt.Sprintf("HTTP %d", resp.StatusCode)
		var envelope apiErrorEnvelope
		if jsonErr := json.Unmarshal(data, &envelope); jsonErr == nil && envelope.Error != nil {
			reason = fmt.Sprintf("HTTP %d: %s (%s)", resp.StatusCode, envelope.Error.Message, envelope.Error.Status)
		}
		return nil, &GenerationError{Backend: BackendREST, Reason: reason}
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &GenerationError{Backend: BackendREST, Reason: "decoding response", Err: err}
	}
	return audioFromCandidates(BackendREST, parsed.Candidates)
}

// audioFromCandidates picks the audio blob out of a generateContent
// response. Multiple audio parts in one candidate are unexpected; the first
// wins and the rest are logged.
func audioFromCandidates(backend Backend, candidates []candidate) (*SynthesizeResult, error) {
	if len(candidates) == 0 {
		return nil, &GenerationError{Backend: backend, Reason: "response contained no candidates"}
	}
	cand := candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return nil, &GenerationError{Backend: backend, Reason: "candidate carried no content parts"}
	}

	var result *SynthesizeResult
	for _, part := range cand.Content.Parts {
		blob := part.InlineData
		if blob == nil || !strings.HasPrefix(blob.MimeType, "audio/") {
			continue
		}
		if result != nil {
			log.Printf("[SPEECH] Warning: response carried more than one audio part, keeping the first (%s)", result.MimeType)
			break
		}
		result = &SynthesizeResult{
			AudioBase64: blob.Data,
			MimeType:    blob.MimeType,
			SampleRate:  RateFromMime(blob.MimeType),
		}
	}
	if result == nil {
		return nil, &GenerationError{Backend: backend, Reason: "no audio part in response"}
	}
	return result, nil
}
