package speech

import (
	"context"
	"encoding/base64"
	"log"
	"strings"

	"cloud.google.com/go/ai/generativelanguage/apiv1alpha/generativelanguagepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"

	"github.com/LLCo/JapaneseVoiceSpeaker/internal/helpers"
)

// synthesizeGRPC performs a one-shot GenerateContent call over the proto
// client dialed in InitClient.
func (c *Client) synthesizeGRPC(ctx context.Context, req SynthesizeRequest) (*SynthesizeResult, error) {
	if c.genai == nil {
		log.Println("[SPEECH] synthesizeGRPC: client not initialized, attempting InitClient...")
		if err := c.InitClient(ctx); err != nil {
			return nil, &GenerationError{Backend: BackendGRPC, Reason: "client initialization failed", Err: err}
		}
	}

	request := &generativelanguagepb.GenerateContentRequest{
		Model: req.Model,
		Contents: []*generativelanguagepb.Content{
			{
				Role: "user",
				Parts: []*generativelanguagepb.Part{
					{Data: &generativelanguagepb.Part_Text{Text: req.Text}},
				},
			},
		},
		GenerationConfig: &generativelanguagepb.GenerationConfig{
			ResponseModalities: []generativelanguagepb.GenerationConfig_Modality{
				generativelanguagepb.GenerationConfig_AUDIO,
			},
		},
	}
	if req.Voice != "" {
		request.GenerationConfig.SpeechConfig = &generativelanguagepb.SpeechConfig{
			VoiceConfig: &generativelanguagepb.VoiceConfig{
				VoiceConfig: &generativelanguagepb.VoiceConfig_PrebuiltVoiceConfig{
					PrebuiltVoiceConfig: &generativelanguagepb.PrebuiltVoiceConfig{
						VoiceName: proto.String(req.Voice),
					},
				},
			},
		}
	}

	if helpers.IsAudioTraceEnabled() {
		log.Printf("[SPEECH] Sending GenerateContent request: %s", prototext.Format(request))
	}

	resp, err := c.genai.GenerateContent(ctx, request)
	if err != nil {
		return nil, &GenerationError{Backend: BackendGRPC, Reason: classifyGRPC(err), Err: err}
	}
	if helpers.IsAudioTraceEnabled() {
		log.Printf("[SPEECH] Received GenerateContent response: %s", prototext.Format(resp))
	}
	return audioFromProto(resp)
}

// classifyGRPC turns a status code into an operator-readable reason.
func classifyGRPC(err error) string {
	switch status.Code(err) {
	case codes.Unauthenticated, codes.PermissionDenied:
		return "authentication failed, check the API key"
	case codes.InvalidArgument:
		return "invalid request, check model and voice names"
	case codes.NotFound:
		return "model not found"
	case codes.ResourceExhausted:
		return "quota exhausted"
	case codes.DeadlineExceeded:
		return "request timed out"
	case codes.Unavailable:
		return "service unavailable"
	default:
		return "request failed"
	}
}

// audioFromProto picks the audio blob out of a proto response. The proto
// carries raw bytes, so the data is re-encoded to keep the result shape
// uniform across backends.
func audioFromProto(resp *generativelanguagepb.GenerateContentResponse) (*SynthesizeResult, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, &GenerationError{Backend: BackendGRPC, Reason: "response contained no candidates"}
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return nil, &GenerationError{Backend: BackendGRPC, Reason: "candidate carried no content parts"}
	}

	var result *SynthesizeResult
	for _, part := range cand.Content.Parts {
		blob := part.GetInlineData()
		if blob == nil || !strings.HasPrefix(blob.MimeType, "audio/") {
			continue
		}
		if result != nil {
			log.Printf("[SPEECH] Warning: response carried more than one audio part, keeping the first (%s)", result.MimeType)
			break
		}
		result = &SynthesizeResult{
			AudioBase64: base64.StdEncoding.EncodeToString(blob.Data),
			MimeType:    blob.MimeType,
			SampleRate:  RateFromMime(blob.MimeType),
		}
	}
	if result == nil {
		return nil, &GenerationError{Backend: BackendGRPC, Reason: "no audio part in response"}
	}
	return result, nil
}
