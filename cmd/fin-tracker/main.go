package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/peterbourgon/ff/v4/ffyaml"

	"github.com/zombor/fin-tracker/internal/expense"
	"github.com/zombor/fin-tracker/internal/ocr"
	"github.com/zombor/fin-tracker/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

type ocrConfig struct {
	provider    string
	visionKey   string
	geminiKey   string
	geminiModel string
	ollamaURL   string
	ollamaModel string
	openaiKey   string
	openaiModel string
	openaiURL   string
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("fin-tracker")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		dbPath      = fs.StringLong("db", "fin-tracker.db", "Database file path")
		storagePath = fs.StringLong("storage", "./receipts", "Receipt image directory")
		provider    = fs.StringLong("ocr", "vision", "OCR provider: vision, gemini, ollama or openai")
		visionKey   = fs.StringLong("vision-key", "", "Google Cloud Vision API key (or set GOOGLE_VISION_API_KEY)")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "llava", "Ollama vision model name")
		openaiKey   = fs.StringLong("openai-key", "", "OpenAI API key (or set OPENAI_API_KEY)")
		openaiModel = fs.StringLong("openai-model", "gpt-4o", "OpenAI vision model name")
		openaiURL   = fs.StringLong("openai-url", "", "OpenAI compatible base URL (optional)")
		ocrTimeout  = fs.IntLong("ocr-timeout", 30, "OCR request timeout in seconds (0 disables)")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		logLevel    = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		logFormat   = fs.StringLong("log-format", "text", "Log format: text or json")
		_           = fs.StringLong("config", "", "YAML config file (optional)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("FIN_TRACKER"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ffyaml.Parse),
		ff.WithConfigAllowMissingFile(),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	logger, err := newLogger(os.Stderr, *logLevel, *logFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	slog.Info("Initializing database...", "path", *dbPath)
	db, err := expense.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("Initializing storage...", "path", *storagePath)
	store, err := expense.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	detector, err := newDetector(ctx, ocrConfig{
		provider:    *provider,
		visionKey:   firstNonEmpty(*visionKey, os.Getenv("GOOGLE_VISION_API_KEY")),
		geminiKey:   firstNonEmpty(*geminiKey, os.Getenv("GEMINI_API_KEY")),
		geminiModel: *geminiModel,
		ollamaURL:   *ollamaURL,
		ollamaModel: *ollamaModel,
		openaiKey:   firstNonEmpty(*openaiKey, os.Getenv("OPENAI_API_KEY")),
		openaiModel: *openaiModel,
		openaiURL:   *openaiURL,
	})
	switch {
	case errors.Is(err, scanning.ErrNotConfigured):
		// Keep serving so the rest of the API works; scans report config_error.
		slog.Warn("OCR provider is not configured, receipt scans will fail", "provider", *provider, "error", err)
		detector = nil
	case err != nil:
		slog.Error("Failed to initialize OCR provider", "provider", *provider, "error", err)
		os.Exit(1)
	default:
		slog.Info("OCR provider ready", "provider", *provider)
		defer detector.Close()
	}

	service := expense.NewService(db, scanning.NewPipeline(detector), store)
	service.SetScanTimeout(time.Duration(*ocrTimeout) * time.Second)

	basicAuth := expense.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := expense.NewServer(service, basicAuth, version)

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

// newDetector builds the configured OCR provider. A missing credential is
// reported as scanning.ErrNotConfigured.
func newDetector(ctx context.Context, cfg ocrConfig) (scanning.TextDetector, error) {
	switch cfg.provider {
	case "vision":
		d, err := ocr.NewVision(ctx, cfg.visionKey)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "gemini":
		d, err := ocr.NewGemini(cfg.geminiKey, cfg.geminiModel)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "ollama":
		d, err := ocr.NewOllama(cfg.ollamaURL, cfg.ollamaModel)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "openai":
		d, err := ocr.NewOpenAI(cfg.openaiKey, cfg.openaiModel, cfg.openaiURL)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown ocr provider %q (valid: vision, gemini, ollama, openai)", cfg.provider)
	}
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (valid: text, json)", format)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
