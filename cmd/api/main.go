// Package main implements the virtual TA API server.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/virtualta/virtualta/engine/domain"
	"github.com/virtualta/virtualta/engine/rag"
	"github.com/virtualta/virtualta/engine/retrieve"
	"github.com/virtualta/virtualta/engine/vecstore"
	"github.com/virtualta/virtualta/pkg/clip"
	"github.com/virtualta/virtualta/pkg/groq"
	"github.com/virtualta/virtualta/pkg/metrics"
	"github.com/virtualta/virtualta/pkg/mid"
	"github.com/virtualta/virtualta/pkg/nomic"
	"github.com/virtualta/virtualta/pkg/ocr"
)

// Config holds all environment-based configuration.
type Config struct {
	Port         string
	DataDir      string
	NomicAPIKey  string
	NomicBaseURL string
	GroqAPIKey   string
	GroqBaseURL  string
	GroqModel    string
	ClipURL      string
	TesseractBin string
	TopK         int
	MaxBodyBytes int64
}

func loadConfig() Config {
	topK, _ := strconv.Atoi(envOr("TOP_K", "3"))
	maxBody, _ := strconv.ParseInt(envOr("MAX_BODY_BYTES", "10485760"), 10, 64)
	return Config{
		Port:         envOr("PORT", "8080"),
		DataDir:      envOr("DATA_DIR", "data"),
		NomicAPIKey:  os.Getenv("NOMIC_API_KEY"),
		NomicBaseURL: os.Getenv("NOMIC_BASE_URL"),
		GroqAPIKey:   os.Getenv("GROQ_API_KEY"),
		GroqBaseURL:  os.Getenv("GROQ_BASE_URL"),
		GroqModel:    os.Getenv("GROQ_MODEL"),
		ClipURL:      os.Getenv("CLIP_URL"),
		TesseractBin: os.Getenv("TESSERACT_BIN"),
		TopK:         topK,
		MaxBodyBytes: maxBody,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Load the text index ---
	textStore, err := vecstore.Load[domain.Chunk](cfg.DataDir, "text")
	if err != nil {
		return fmt.Errorf("load text store: %w", err)
	}
	logger.Info("text store loaded", "chunks", textStore.Len(), "dim", textStore.Dim())

	// --- Load the image index; the server runs text-only without it ---
	var imageStore *vecstore.Store[domain.ImageRef]
	if s, err := vecstore.Load[domain.ImageRef](cfg.DataDir, "images"); err != nil {
		logger.Warn("image store unavailable, continuing text-only", "err", err)
	} else {
		imageStore = s
		logger.Info("image store loaded", "images", s.Len(), "dim", s.Dim())
	}

	// --- Build RAG service ---
	deps := rag.Deps{
		Embed: nomic.New(cfg.NomicAPIKey, cfg.NomicBaseURL, "", textStore.Dim()),
		Chat:  groq.New(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel),
		Text:  textStore,
	}
	if imageStore != nil && cfg.ClipURL != "" {
		deps.ImageEmbed = clip.New(cfg.ClipURL, imageStore.Dim())
		deps.OCR = ocr.New(cfg.TesseractBin)
		deps.Images = imageStore
		deps.Topics = retrieve.NewTopicIndex(textStore.Metadata())
	}

	opts := rag.DefaultOptions()
	opts.TopK = cfg.TopK
	ragSvc := rag.New(deps, opts, logger)

	// --- Metrics ---
	reg := metrics.New()

	// --- Build HTTP server ---
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.Handle("POST /api/ask", handleAsk(ragSvc, logger, reg))
	mux.Handle("GET /metrics", reg.Handler())

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(),
		mid.MaxBody(cfg.MaxBodyBytes),
		mid.OTel("virtualta-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// --- Handlers ---

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// asker is the part of the RAG service the ask handler needs.
type asker interface {
	Ask(ctx context.Context, question string, imageData []byte) (*rag.Answer, error)
}

// AskRequest is the JSON body for POST /api/ask. Image is base64 of the
// raw screenshot bytes.
type AskRequest struct {
	Question string `json:"question"`
	Image    string `json:"image,omitempty"`
}

// AskResponse is the JSON response for POST /api/ask.
type AskResponse struct {
	Answer string        `json:"answer"`
	Links  []domain.Link `json:"links"`
}

func handleAsk(svc asker, logger *slog.Logger, reg *metrics.Registry) http.HandlerFunc {
	requests := func(outcome string) *metrics.Counter {
		return reg.Counter(metrics.WithLabels("ask_requests_total", "outcome", outcome), "Ask requests by outcome")
	}
	latency := reg.Histogram("ask_duration_seconds", "Ask request latency", nil)

	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var req AskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			requests("bad_request").Inc()
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		var imageData []byte
		if req.Image != "" {
			data, err := base64.StdEncoding.DecodeString(req.Image)
			if err != nil {
				requests("bad_request").Inc()
				http.Error(w, `{"error":"image is not valid base64"}`, http.StatusBadRequest)
				return
			}
			imageData = data
		}

		answer, err := svc.Ask(r.Context(), req.Question, imageData)
		if err != nil {
			if errors.Is(err, domain.ErrEmptyQuestion) {
				requests("bad_request").Inc()
				http.Error(w, `{"error":"question is required"}`, http.StatusBadRequest)
				return
			}
			requests("error").Inc()
			logger.Error("ask failed", "err", err)
			http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			return
		}

		requests("ok").Inc()
		latency.Since(start)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(AskResponse{Answer: answer.Text, Links: answer.Links})
	}
}
