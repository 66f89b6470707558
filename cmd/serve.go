package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/edukit/classpilot/internal/backend"
	"github.com/edukit/classpilot/internal/config"
	"github.com/edukit/classpilot/internal/engine"
	"github.com/edukit/classpilot/internal/llm"
	"github.com/edukit/classpilot/internal/persona"
	"github.com/edukit/classpilot/internal/tools"
	"github.com/edukit/classpilot/internal/transcript"
)

var (
	serveHost        string
	servePort        int
	serveProvider    string
	serveModel       string
	serveCORSOrigins []string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides config)")
	serveCmd.Flags().StringVar(&serveProvider, "provider", "", "Model provider: anthropic, openai, gemini")
	serveCmd.Flags().StringVar(&serveModel, "model", "", "Model override for the selected provider")
	serveCmd.Flags().StringArrayVar(&serveCORSOrigins, "cors-origin", nil, "Allowed CORS origin (repeatable, or '*' for all)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the assistant HTTP service",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.ApplyOverrides(serveProvider, serveModel)
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	log := newLogger(cfg.LogLevel)

	provider, err := buildProvider(cfg)
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			return err
		}
		// Keep serving so health checks pass; assistant requests are
		// refused with a configuration error until credentials appear.
		log.Warn().Msg("no model provider configured, assistant requests will be refused")
		provider = nil
	}

	personas, err := persona.LoadRegistry(cfg.Personas.Dir)
	if err != nil {
		return fmt.Errorf("load personas: %w", err)
	}

	transcripts, err := transcript.NewStore(transcript.Config{
		Enabled: cfg.Transcripts.Enabled,
		DBPath:  cfg.Transcripts.DBPath,
	})
	if err != nil {
		return fmt.Errorf("open transcript store: %w", err)
	}
	defer transcripts.Close()

	eng := engine.New(provider, tools.NewRegistry(), personas, transcripts)

	srv := &apiServer{
		host:        cfg.Server.Host,
		port:        cfg.Server.Port,
		authToken:   cfg.Server.AuthToken,
		corsOrigins: append([]string(nil), serveCORSOrigins...),
		backendURL:  cfg.Backend.BaseURL,
		production:  cfg.IsProduction(),
		engine:      eng,
		log:         log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(); err != nil {
		return err
	}
	log.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).
		Str("environment", cfg.Environment).Msg("classpilot listening")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func buildProvider(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(llm.Config{
		Provider:        cfg.Provider,
		Model:           modelFor(cfg),
		AnthropicAPIKey: cfg.Anthropic.APIKey,
		OpenAIAPIKey:    cfg.OpenAI.APIKey,
		OpenAIBaseURL:   cfg.OpenAI.BaseURL,
		GeminiAPIKey:    cfg.Gemini.APIKey,
	})
}

func modelFor(cfg *config.Config) string {
	switch cfg.Provider {
	case "anthropic":
		return cfg.Anthropic.Model
	case "openai":
		return cfg.OpenAI.Model
	case "gemini":
		return cfg.Gemini.Model
	}
	return ""
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

type apiServer struct {
	host        string
	port        int
	authToken   string
	corsOrigins []string
	backendURL  string
	production  bool
	engine      *engine.Engine
	log         zerolog.Logger

	server *http.Server
}

func (s *apiServer) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.host, s.port),
		Handler: s.routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}
		return nil
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

func (s *apiServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/assistant", s.auth(s.cors(s.handleAssistant)))
	return mux
}

func (s *apiServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *apiServer) handleAssistant(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req engine.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	baseURL, err := backend.ResolveBaseURL(r, s.backendURL, s.production)
	if err != nil {
		s.log.Error().Err(err).Msg("cannot resolve backend base URL")
		writeError(w, http.StatusInternalServerError, "backend is not configured")
		return
	}
	client := backend.NewClient(baseURL, r.Header.Get("Cookie"))

	ctx := s.log.WithContext(r.Context())
	reply, err := s.engine.Handle(ctx, &req, client)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *apiServer) writeEngineError(w http.ResponseWriter, err error) {
	var vErr *engine.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, llm.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, "the assistant has no model provider configured")
	case errors.Is(err, llm.ErrUpstreamUnavailable):
		s.log.Error().Err(err).Msg("model provider unavailable")
		writeError(w, http.StatusInternalServerError, "the assistant is temporarily unavailable, please try again")
	default:
		s.log.Error().Err(err).Msg("assistant request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *apiServer) auth(next http.HandlerFunc) http.HandlerFunc {
	if s.authToken == "" {
		return next
	}
	const prefix = "Bearer "
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, prefix) || strings.TrimSpace(strings.TrimPrefix(header, prefix)) != s.authToken {
			writeError(w, http.StatusUnauthorized, "invalid authentication credentials")
			return
		}
		next(w, r)
	}
}

func (s *apiServer) cors(next http.HandlerFunc) http.HandlerFunc {
	allowed := make(map[string]struct{}, len(s.corsOrigins))
	allowAll := false
	for _, origin := range s.corsOrigins {
		o := strings.TrimSpace(origin)
		if o == "" {
			continue
		}
		if o == "*" {
			allowAll = true
			continue
		}
		allowed[o] = struct{}{}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if _, ok := allowed[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Cookie")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
