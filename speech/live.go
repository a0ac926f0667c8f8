package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/LLCo/JapaneseVoiceSpeaker/internal/helpers"
)

const (
	// liveDefaultEndpoint is the WebSocket endpoint for the Gemini live API.
	liveDefaultEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1alpha.GenerativeService.BidiGenerateContent"

	liveHandshakeTimeout = 30 * time.Second
	liveSetupTimeout     = 30 * time.Second
	liveTurnTimeout      = 60 * time.Second
)

// liveSetupRequest is the initial message of a live session.
type liveSetupRequest struct {
	Setup liveSetupConfig `json:"setup"`
}

type liveSetupConfig struct {
	Model            string            `json:"model"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// liveClientMessage carries one user turn.
type liveClientMessage struct {
	ClientContent *liveClientContent `json:"clientContent,omitempty"`
}

type liveClientContent struct {
	Turns        []Content `json:"turns"`
	TurnComplete bool      `json:"turnComplete"`
}

// liveServerResponse is the envelope of every server message.
type liveServerResponse struct {
	ServerContent *liveServerContent `json:"serverContent,omitempty"`
	SetupComplete *struct{}          `json:"setupComplete,omitempty"`
	UsageMetadata *liveUsageMetadata `json:"usageMetadata,omitempty"`
}

type liveServerContent struct {
	ModelTurn          *Content `json:"modelTurn,omitempty"`
	TurnComplete       bool     `json:"turnComplete"`
	GenerationComplete bool     `json:"generationComplete"`
	Interrupted        bool     `json:"interrupted"`
}

type liveUsageMetadata struct {
	PromptTokenCount   int32 `json:"promptTokenCount"`
	ResponseTokenCount int32 `json:"responseTokenCount"`
	TotalTokenCount    int32 `json:"totalTokenCount"`
}

// synthesizeLive runs one short-lived live API session: connect, set up the
// voice, send the text as a single completed turn, and collect audio chunks
// until the server declares the turn complete.
func (c *Client) synthesizeLive(ctx context.Context, req SynthesizeRequest) (*SynthesizeResult, error) {
	endpoint := c.liveEndpoint
	if endpoint == "" {
		endpoint = liveDefaultEndpoint
	}

	log.Printf("[SPEECH] Connecting to live endpoint for model: %s", req.Model)
	header := http.Header{}
	header.Add("x-goog-api-key", c.APIKey)

	dialer := websocket.Dialer{
		HandshakeTimeout: liveHandshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, &GenerationError{
				Backend: BackendLive,
				Reason:  fmt.Sprintf("connection failed (HTTP status %d)", resp.StatusCode),
				Err:     err,
			}
		}
		return nil, &GenerationError{Backend: BackendLive, Reason: "connection failed", Err: err}
	}
	defer closeLiveConn(conn)

	if err := sendLiveSetup(conn, req.Model, req.Voice); err != nil {
		return nil, err
	}
	if err := waitForSetupComplete(ctx, conn); err != nil {
		return nil, err
	}
	log.Printf("[SPEECH] Live session established for model: %s", req.Model)

	if err := sendLiveTurn(conn, req.Text); err != nil {
		return nil, err
	}
	return collectLiveAudio(ctx, conn)
}

// closeLiveConn says goodbye properly before dropping the connection.
func closeLiveConn(conn *websocket.Conn) {
	err := conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	if err != nil {
		log.Printf("[SPEECH] Error sending close message: %v", err)
	}
	conn.Close()
}

func sendLiveSetup(conn *websocket.Conn, model, voice string) error {
	setup := liveSetupRequest{
		Setup: liveSetupConfig{
			Model:            model,
			GenerationConfig: audioConfig(voice),
		},
	}
	payload, err := json.Marshal(setup)
	if err != nil {
		return &GenerationError{Backend: BackendLive, Reason: "encoding setup message", Err: err}
	}
	if helpers.IsAudioTraceEnabled() {
		log.Printf("[SPEECH] Sending setup message: %s", payload)
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return &GenerationError{Backend: BackendLive, Reason: "sending setup message", Err: err}
	}
	return nil
}

// waitForSetupComplete reads messages until the server acknowledges the
// session. The read happens on a helper goroutine so the timeout fires even
// when the connection goes silent.
func waitForSetupComplete(ctx context.Context, conn *websocket.Conn) error {
	setupCtx, cancel := context.WithTimeout(ctx, liveSetupTimeout)
	defer cancel()

	setupCompleteCh := make(chan struct{}, 1)
	errorCh := make(chan error, 1)

	go func() {
		for {
			select {
			case <-setupCtx.Done():
				return
			default:
			}

			_, message, err := conn.ReadMessage()
			if err != nil {
				errorCh <- fmt.Errorf("failed to read from WebSocket: %v", err)
				return
			}
			if helpers.IsAudioTraceEnabled() {
				log.Printf("[SPEECH] Received message: %s", message)
			}

			var response liveServerResponse
			if err := json.Unmarshal(message, &response); err != nil {
				errorCh <- fmt.Errorf("failed to parse server message: %v", err)
				return
			}
			if response.SetupComplete != nil {
				setupCompleteCh <- struct{}{}
				return
			}
		}
	}()

	select {
	case <-setupCompleteCh:
		return nil
	case err := <-errorCh:
		return &GenerationError{Backend: BackendLive, Reason: "setup failed", Err: err}
	case <-setupCtx.Done():
		return &GenerationError{Backend: BackendLive, Reason: "setup timed out waiting for server response"}
	}
}

func sendLiveTurn(conn *websocket.Conn, text string) error {
	msg := liveClientMessage{
		ClientContent: &liveClientContent{
			Turns: []Content{
				{Role: "user", Parts: []Part{{Text: text}}},
			},
			TurnComplete: true,
		},
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return &GenerationError{Backend: BackendLive, Reason: "encoding content message", Err: err}
	}
	if helpers.IsAudioTraceEnabled() {
		log.Printf("[SPEECH] Sending content message: %s", payload)
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return &GenerationError{Backend: BackendLive, Reason: "sending content message", Err: err}
	}
	return nil
}

// collectLiveAudio gathers inline audio chunks until the turn completes.
// Chunk payloads are merged into a single base64 string so the caller sees
// the same result shape the one-shot backends produce.
func collectLiveAudio(ctx context.Context, conn *websocket.Conn) (*SynthesizeResult, error) {
	deadline := time.Now().Add(liveTurnTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		log.Printf("[SPEECH] Warning: could not set read deadline: %v", err)
	}

	var (
		chunks []string
		mime   string
	)
	for {
		select {
		case <-ctx.Done():
			return nil, &GenerationError{Backend: BackendLive, Reason: "canceled while waiting for audio", Err: ctx.Err()}
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil, &GenerationError{Backend: BackendLive, Reason: "connection closed before the turn completed"}
			}
			return nil, &GenerationError{Backend: BackendLive, Reason: "reading from WebSocket", Err: err}
		}
		if helpers.IsAudioTraceEnabled() {
			log.Printf("[SPEECH] Received message: %s", message)
		}

		var response liveServerResponse
		if err := json.Unmarshal(message, &response); err != nil {
			return nil, &GenerationError{Backend: BackendLive, Reason: "parsing server message", Err: err}
		}

		if response.UsageMetadata != nil {
			log.Printf("[SPEECH] Live turn token usage: prompt=%d response=%d total=%d",
				response.UsageMetadata.PromptTokenCount,
				response.UsageMetadata.ResponseTokenCount,
				response.UsageMetadata.TotalTokenCount)
		}

		content := response.ServerContent
		if content == nil {
			continue
		}
		if content.ModelTurn != nil {
			for _, part := range content.ModelTurn.Parts {
				blob := part.InlineData
				if blob == nil || !strings.HasPrefix(blob.MimeType, "audio/") {
					continue
				}
				if mime == "" {
					mime = blob.MimeType
				}
				chunks = append(chunks, blob.Data)
			}
		}
		if content.Interrupted {
			return nil, &GenerationError{Backend: BackendLive, Reason: "generation interrupted by server"}
		}
		if content.TurnComplete {
			break
		}
	}

	if len(chunks) == 0 {
		return nil, &GenerationError{Backend: BackendLive, Reason: "no audio in turn"}
	}
	joined, err := joinBase64Chunks(chunks)
	if err != nil {
		return nil, &GenerationError{Backend: BackendLive, Reason: "merging audio chunks", Err: err}
	}
	return &SynthesizeResult{
		AudioBase64: joined,
		MimeType:    mime,
		SampleRate:  RateFromMime(mime),
	}, nil
}
