// Command example synthesizes one line of Japanese text to a WAV file
// without starting the terminal UI. It walks the library pipeline end to
// end: synthesize, decode, encode, write.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/LLCo/JapaneseVoiceSpeaker/audio"
	"github.com/LLCo/JapaneseVoiceSpeaker/speech"
)

func main() {
	text := flag.String("text", "こんにちは、世界", "Text to speak.")
	voice := flag.String("voice", "Kore", "Prebuilt voice name.")
	model := flag.String("model", "models/gemini-2.5-flash-preview-tts", "Speech model ID.")
	out := flag.String("out", "speech.wav", "Output WAV path.")
	apiKey := flag.String("api-key", "", "API key (falls back to GOOGLE_API_KEY / GEMINI_API_KEY).")
	flag.Parse()

	// Best-effort .env load, matching the main binary
	_ = godotenv.Load()

	client := &speech.Client{APIKey: *apiKey}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	// Resolves the API key from the environment when the flag is empty.
	if err := client.InitClient(ctx); err != nil {
		log.Fatalf("init: %v", err)
	}
	defer client.Close()

	result, err := client.Synthesize(ctx, speech.SynthesizeRequest{
		Text:  *text,
		Voice: *voice,
		Model: *model,
	})
	if err != nil {
		log.Fatalf("synthesize: %v", err)
	}

	raw, err := audio.DecodeBase64(result.AudioBase64)
	if err != nil {
		log.Fatalf("decode: %v", err)
	}
	buf := audio.DecodePCM16(raw, result.SampleRate, audio.DefaultChannels)

	data, err := audio.EncodeWAV(buf)
	if err != nil {
		log.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		log.Fatalf("write: %v", err)
	}

	fmt.Printf("Wrote %s (%.2fs at %d Hz)\n", *out, buf.Seconds(), buf.SampleRate)
}
