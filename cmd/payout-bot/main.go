package main

import (
	"bufio"
	_ "embed"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/tseretelitornike/payout-bot/internal/chat"
	"github.com/tseretelitornike/payout-bot/internal/claim"
	"github.com/tseretelitornike/payout-bot/internal/conversation"
	"github.com/tseretelitornike/payout-bot/internal/ocr"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("payout-bot")
	var (
		dbPath        = fs.StringLong("db", "claims.db", "Claim archive file path")
		dataPath      = fs.StringLong("data", "./data/users", "Per-user working storage base path")
		ocrBackend    = fs.StringLong("ocr", "gemini", "OCR backend: 'gemini' or 'azure'")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set PAYOUT_BOT_GEMINI_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		azureEndpoint = fs.StringLong("azure-endpoint", "", "Azure Computer Vision resource endpoint")
		azureKey      = fs.StringLong("azure-key", "", "Azure Computer Vision API key")
		sessionTTL    = fs.DurationLong("session-ttl", 24*time.Hour, "Idle time before a session is evicted")
		userID        = fs.StringLong("user", "local", "User identity for the console transport")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("PAYOUT_BOT"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize the claim archive
	slog.Info("Initializing claim archive...")
	archive, err := claim.NewBoltArchive(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize claim archive", "error", err)
		os.Exit(1)
	}
	defer archive.Close()

	// Initialize working storage and sweep leftovers from a previous run
	slog.Info("Initializing working storage...")
	workspace, err := conversation.NewLocalWorkspace(*dataPath)
	if err != nil {
		slog.Error("Failed to initialize working storage", "error", err)
		os.Exit(1)
	}
	if err := workspace.Sweep(); err != nil {
		slog.Warn("Failed to sweep stale user directories", "error", err)
	}

	// Initialize the OCR backend
	var recognizer ocr.Recognizer
	switch *ocrBackend {
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini OCR...", "model", *geminiModel)
		recognizer, err = ocr.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "azure":
		slog.Info("Initializing Azure Read OCR...", "endpoint", *azureEndpoint)
		recognizer, err = ocr.NewAzure(*azureEndpoint, *azureKey)
		if err != nil {
			slog.Error("Failed to initialize Azure", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid OCR backend", "backend", *ocrBackend, "valid", "gemini or azure")
		os.Exit(1)
	}
	defer recognizer.Close()

	// Sessions idle past the TTL release their working storage
	store := conversation.NewStore(*sessionTTL, func(s *conversation.Session) {
		s.Release(workspace)
	})

	transport := chat.NewConsoleTransport(os.Stdout)
	bot := conversation.New(store, transport, chat.FileDownloader{}, recognizer, workspace, claim.LocalFormFiller{}, archive)

	slog.Info("Bot ready", "user", *userID)
	fmt.Println("Type a message, 'photo <path>' to send a ticket photo, or 'cancel' to stop. Ctrl-D quits.")

	// Read console events until EOF or interrupt
	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			ev, ok := consoleEvent(*userID, scanner.Text())
			if !ok {
				continue
			}
			if err := bot.HandleEvent(ev); err != nil {
				slog.Error("Event handling failed", "error", err)
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-done:
	}

	slog.Info("Shutting down...")
}

// consoleEvent turns one console line into a chat event.
func consoleEvent(userID, line string) (chat.Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return chat.Event{}, false
	}

	switch {
	case line == "cancel" || line == "/cancel":
		return chat.Event{Type: chat.EventCancel, UserID: userID}, true
	case strings.HasPrefix(line, "photo ") || strings.HasPrefix(line, "/photo "):
		path := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, "/photo"), "photo"))
		contentType := mime.TypeByExtension(filepath.Ext(path))
		return chat.Event{
			Type:   chat.EventPhoto,
			UserID: userID,
			Photo:  chat.PhotoRef{FileID: path, ContentType: contentType},
		}, true
	default:
		return chat.Event{Type: chat.EventText, UserID: userID, Text: line}, true
	}
}
