package speech

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	language "cloud.google.com/go/ai/generativelanguage/apiv1alpha"
	"google.golang.org/api/option"
)

const defaultHTTPTimeout = 60 * time.Second

// Client talks to the Gemini speech-generation API. The zero value is
// usable after InitClient; APIKey and Backend may be set before that call.
type Client struct {
	// APIKey authenticates every backend. Left empty, InitClient reads it
	// from the standard environment variables.
	APIKey string

	// Backend picks the transport for Synthesize. Zero value means REST.
	Backend Backend

	genai      *language.GenerativeClient
	httpClient *http.Client

	// restEndpoint and liveEndpoint override the production URLs in tests.
	restEndpoint string
	liveEndpoint string
}

// InitClient resolves credentials and prepares the selected backend. The
// gRPC backend dials its generative service connection here so the first
// utterance does not pay for the handshake; REST and live defer all network
// work to Synthesize.
func (c *Client) InitClient(ctx context.Context) error {
	if c.Backend == "" {
		c.Backend = BackendREST
	}

	if c.APIKey == "" {
		if apiKey := os.Getenv("GOOGLE_API_KEY"); apiKey != "" {
			c.APIKey = apiKey
			log.Println("[SPEECH] Using API key from GOOGLE_API_KEY environment variable")
		} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
			c.APIKey = apiKey
			log.Println("[SPEECH] Using API key from GEMINI_API_KEY environment variable")
		} else if apiKey := os.Getenv("GOOGLE_GENERATIVE_AI_KEY"); apiKey != "" {
			c.APIKey = apiKey
			log.Println("[SPEECH] Using API key from GOOGLE_GENERATIVE_AI_KEY environment variable")
		}
	}
	if c.APIKey == "" {
		return fmt.Errorf("no API key provided, set GOOGLE_API_KEY or GEMINI_API_KEY")
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	if c.Backend != BackendGRPC {
		return nil
	}
	if c.genai != nil {
		return nil
	}

	opts := []option.ClientOption{option.WithAPIKey(c.APIKey)}

	// Keep the key out of the logs.
	loggableOpts := make([]string, 0, len(opts))
	for range opts {
		loggableOpts = append(loggableOpts, "WithAPIKey(****)")
	}
	log.Printf("[SPEECH] Initializing generative client with options: %s", strings.Join(loggableOpts, ", "))

	client, err := language.NewGenerativeClient(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create generative client: %w", err)
	}
	c.genai = client
	return nil
}

// Synthesize generates spoken audio for one utterance through the
// configured backend. Empty text is rejected locally so no backend pays a
// round trip to learn the request was void.
func (c *Client) Synthesize(ctx context.Context, req SynthesizeRequest) (*SynthesizeResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, &GenerationError{Backend: c.Backend, Reason: "empty text"}
	}
	req.Model = normalizeModel(req.Model)

	switch c.Backend {
	case BackendGRPC:
		return c.synthesizeGRPC(ctx, req)
	case BackendLive:
		return c.synthesizeLive(ctx, req)
	default:
		return c.synthesizeREST(ctx, req)
	}
}

// Close releases the gRPC connection if one was dialed. Safe to call on a
// client that never initialized.
func (c *Client) Close() error {
	if c == nil || c.genai == nil {
		return nil
	}
	err := c.genai.Close()
	c.genai = nil
	return err
}
