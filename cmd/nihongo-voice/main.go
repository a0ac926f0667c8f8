// Command nihongo-voice is the terminal front end for the Japanese speech
// pipeline: type a line, hear it spoken, watch the waveform, save the WAV.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof" // Register pprof handlers
	"os"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	nihongovoice "github.com/LLCo/JapaneseVoiceSpeaker"
	"github.com/LLCo/JapaneseVoiceSpeaker/internal/config"
	"github.com/LLCo/JapaneseVoiceSpeaker/speech"
)

const version = "0.3.0"

// setupLogging directs log output to a file for easier debugging.
func setupLogging() *os.File {
	logFilePath := "nihongo-voice-debug.log"
	f, err := tea.LogToFile(logFilePath, "nihongo-voice")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file '%s': %v\n", logFilePath, err)
		return nil
	}
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(f)
	return f
}

func main() {
	// --- Command Line Flags ---
	modelFlag := flag.String("model", "", "Speech model ID to use (default "+nihongovoice.DefaultModel+").")
	voiceFlag := flag.String("voice", "", "Prebuilt voice for speech output (default "+nihongovoice.DefaultVoice+").")
	backendFlag := flag.String("backend", "", "Transport to the speech API: rest, grpc or live.")
	apiKeyFlag := flag.String("api-key", "", "API key (overrides GOOGLE_API_KEY / GEMINI_API_KEY env vars).")
	configFlag := flag.String("config", "", "Path to a YAML config file.")
	outdirFlag := flag.String("outdir", "", "Directory for saved WAV files (default: working directory).")
	historyFlag := flag.Bool("history", true, "Record spoken lines in the utterance history.")
	historyPathFlag := flag.String("history-path", "", "SQLite file for the utterance history.")
	waveFlag := flag.Bool("wave", true, "Show the live waveform while audio plays.")
	logoFlag := flag.Bool("logo", true, "Show the logo line in the header.")

	listModelsFlag := flag.Bool("list-models", false, "List available models and exit.")
	filterModelsFlag := flag.String("filter-models", "", "Filter models list (used with --list-models).")
	listVoicesFlag := flag.Bool("list-voices", false, "List prebuilt voices and exit.")
	versionFlag := flag.Bool("version", false, "Print version and exit.")

	debugFlag := flag.Bool("debug", false, "Write debug logs to nihongo-voice-debug.log.")
	logMessagesFlag := flag.Bool("log-messages", false, "Show recent log messages inside the UI.")
	pprofServer := flag.String("pprof-server", "", "Enable pprof HTTP server on given address (e.g. 'localhost:6060').")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Speak Japanese text aloud with the Gemini speech API.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  GOOGLE_API_KEY / GEMINI_API_KEY: API key (used if --api-key is not set).\n")
		fmt.Fprintf(os.Stderr, "  NIHONGO_AUDIO_TRACE=1: log full audio pipeline payloads.\n")
		fmt.Fprintf(os.Stderr, "\nConfig file lookup order: --config, ~/.nihongo-voice.yaml, /etc/nihongo-voice/config.yaml.\n")
	}
	flag.Parse()

	if *versionFlag {
		fmt.Printf("nihongo-voice %s\n", version)
		return
	}

	// Handle --list-voices flag; the catalog is local, no API call needed
	if *listVoicesFlag {
		fmt.Println("Prebuilt voices:")
		fmt.Println("==========")
		for _, v := range speech.PrebuiltVoices() {
			fmt.Printf("%-8s %s\n", v.Name, v.Character)
		}
		fmt.Println("==========")
		return
	}

	// Best-effort .env load so GOOGLE_API_KEY can live next to the binary.
	_ = godotenv.Load()

	// --- Set up logging first ---
	var logFile *os.File
	if *debugFlag {
		logFile = setupLogging()
	}
	if logFile != nil {
		defer logFile.Close()
		log.Println("--- Application Start ---")
		log.Printf("CLI Flags: model=%q voice=%q backend=%q api-key-set=%t list-models=%t",
			*modelFlag, *voiceFlag, *backendFlag, *apiKeyFlag != "", *listModelsFlag)
	} else {
		// Keep stderr clean; the TUI owns the terminal.
		log.SetOutput(io.Discard)
	}

	// Determine API key: flag > env (env handled by the client itself).
	apiKey := *apiKeyFlag

	// Handle --list-models flag
	if *listModelsFlag {
		fmt.Println("Fetching available models...")
		client := &speech.Client{APIKey: apiKey}

		models, err := client.ListModels(*filterModelsFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing models: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Found %d models", len(models))
		if *filterModelsFlag != "" {
			fmt.Printf(" matching filter: %q", *filterModelsFlag)
		}
		fmt.Println()
		fmt.Println("==========")
		sort.Strings(models)
		for _, model := range models {
			fmt.Println(model)
		}
		fmt.Println("==========")
		return
	}

	// HTTP server for pprof
	if *pprofServer != "" {
		go func() {
			log.Printf("Starting pprof HTTP server on %s", *pprofServer)
			if err := http.ListenAndServe(*pprofServer, nil); err != nil {
				log.Printf("Error starting pprof HTTP server: %v", err)
				fmt.Fprintf(os.Stderr, "Error starting pprof HTTP server: %v\n", err)
			}
		}()
	}

	// The TUI needs a real terminal.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Warning: stdout is not a terminal; the UI may not render correctly.")
	}

	// --- Configuration: file first, explicit flags override ---
	cfg, err := config.LoadWithFallback(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	setFlags := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	if setFlags["model"] {
		cfg.Speech.Model = *modelFlag
	}
	if setFlags["voice"] {
		cfg.Speech.Voice = *voiceFlag
		if _, known := speech.FindVoice(*voiceFlag); !known {
			fmt.Fprintf(os.Stderr, "Warning: unknown voice %q; the API may reject it (see --list-voices).\n", *voiceFlag)
		}
	}
	if setFlags["backend"] {
		cfg.Speech.Backend = *backendFlag
	}
	if setFlags["outdir"] {
		cfg.Output.Dir = *outdirFlag
	}
	if setFlags["history"] {
		cfg.History.Enabled = *historyFlag
	}
	if setFlags["history-path"] {
		cfg.History.Path = *historyPathFlag
	}

	// Construct component options
	opts := []nihongovoice.Option{
		nihongovoice.WithConfig(cfg),
		nihongovoice.WithAPIKey(apiKey),
		nihongovoice.WithLogo(*logoFlag),
		nihongovoice.WithWaveform(*waveFlag),
		nihongovoice.WithLogMessages(*logMessagesFlag),
	}

	// --- Initialize Component ---
	component := nihongovoice.New(opts...)

	model, err := component.InitModel()
	if err != nil {
		log.Printf("Failed to initialize model: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		os.Exit(1)
	}

	// --- Run Bubble Tea Program ---
	p := tea.NewProgram(
		model,
		tea.WithMouseCellMotion(), // Better mouse support
	)

	log.Println("Starting Bubble Tea program...")
	if _, err := p.Run(); err != nil {
		log.Printf("Error running program: %v", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}

	log.Println("--- Application End ---")
}
