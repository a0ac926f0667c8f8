package helpers

import (
	"log"
	"os"
	"sync/atomic"
)

// --- Audio Tracing ---
var audioTraceEnabled int32 // Use atomic for safe check across goroutines

func init() {
	if os.Getenv("NIHONGO_AUDIO_TRACE") == "1" {
		atomic.StoreInt32(&audioTraceEnabled, 1)
		log.Println("--- Detailed audio pipeline tracing enabled (NIHONGO_AUDIO_TRACE=1) ---")
	}
}

// IsAudioTraceEnabled checks if detailed audio tracing is enabled via environment variable.
func IsAudioTraceEnabled() bool {
	return atomic.LoadInt32(&audioTraceEnabled) == 1
}
