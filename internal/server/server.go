package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thruflo/turing/internal/auth"
	"github.com/thruflo/turing/internal/config"
	"github.com/thruflo/turing/internal/machine"
	"github.com/thruflo/turing/internal/runner"
	"github.com/thruflo/turing/internal/unary"
)

// maxBodyBytes bounds request bodies on the API.
const maxBodyBytes = 1 << 20

// MaxReplaySpeed is the largest speed_ms accepted by /api/replay.
const MaxReplaySpeed = 10000

// Server serves the simulation API and the replay client.
type Server struct {
	port         int
	passwordHash string
	sim          unary.Simulator
	table        *machine.Table
	assets       fs.FS
	logger       *slog.Logger
	limiter      *rateLimiter

	// HTTP server
	server   *http.Server
	listener net.Listener

	// Token management
	mu     sync.RWMutex
	tokens map[string]time.Time // token -> expiry time

	// Lifecycle
	started bool
}

// Config holds server configuration options.
type Config struct {
	Port int
	// PasswordHash is optional; when empty the API needs no token.
	PasswordHash string
	Simulator    unary.Simulator
	// Table is reported by /api/table; nil means the addition table.
	Table     *machine.Table
	RateLimit RateLimitConfig
	Assets    fs.FS
	Logger    *slog.Logger
}

// NewServer creates a new Server instance.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.Simulator == nil {
		return nil, errors.New("simulator is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	table := cfg.Table
	if table == nil {
		table = machine.AdditionTable()
	}

	return &Server{
		port:         cfg.Port,
		passwordHash: cfg.PasswordHash,
		sim:          cfg.Simulator,
		table:        table,
		assets:       cfg.Assets,
		logger:       logger,
		limiter:      newRateLimiter(cfg.RateLimit, logger),
		tokens:       make(map[string]time.Time),
	}, nil
}

// NewServerFromConfig creates a new Server from the loaded configuration.
func NewServerFromConfig(cfg *config.Config, sim unary.Simulator, assets fs.FS, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server config is required")
	}
	rl := DefaultRateLimitConfig()
	rl.MaxRequests = cfg.Server.RateLimit.MaxRequests
	if cfg.Server.RateLimit.Window > 0 {
		rl.Window = cfg.Server.RateLimit.Window
	}
	return NewServer(&Config{
		Port:         cfg.Server.Port,
		PasswordHash: cfg.Server.PasswordHash,
		Simulator:    sim,
		RateLimit:    rl,
		Assets:       assets,
		Logger:       logger,
	})
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Handler returns the routed handler, for mounting without Start.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.setupRoutes(mux)
	return s.withRequestID(mux)
}

// Start starts the HTTP server.
// The server runs until ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("server already started")
	}

	addr := fmt.Sprintf(":%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	// No WriteTimeout: replay streams outlive any fixed bound.
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.started = true
	s.mu.Unlock()

	s.logger.Info("server listening", "addr", listener.Addr().String(), "auth", s.passwordHash != "")

	go s.cleanup(ctx)
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	err = s.server.Serve(listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.started = false
	s.logger.Info("server stopped")
	return nil
}

// ListenAddr returns the actual address the server is listening on.
// Useful when port 0 is used to get an available port.
// Returns empty string if not started.
func (s *Server) ListenAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// setupRoutes configures the HTTP routes.
func (s *Server) setupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.handleHealth)
	if s.passwordHash != "" {
		mux.HandleFunc("/auth", s.withRateLimit(s.handleAuth))
	}

	mux.HandleFunc("/api/simulate", s.withRateLimit(s.withAuth(s.handleSimulate)))
	mux.HandleFunc("/api/replay", s.withRateLimit(s.withAuth(s.handleReplay)))
	mux.HandleFunc("/api/table", s.withAuth(s.handleTable))
	mux.HandleFunc("/", s.handleStatic) // Static assets are public for initial page load
}

type ctxKey struct{}

// withRequestID tags each request with an X-Request-ID and logs it.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		log := s.logger.With("request_id", id)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, log)))
		log.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// log returns the request-scoped logger.
func (s *Server) log(r *http.Request) *slog.Logger {
	if l, ok := r.Context().Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return s.logger
}

// withAuth wraps a handler with authentication middleware. It is a no-op
// when no password is configured.
func (s *Server) withAuth(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.passwordHash == "" {
			handler(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "authorization required")
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			writeError(w, http.StatusUnauthorized, "invalid authorization format")
			return
		}

		token := strings.TrimPrefix(authHeader, bearerPrefix)
		if !s.ValidateToken(token) {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		handler(w, r)
	}
}

// withRateLimit rejects clients over their request budget with 429.
func (s *Server) withRateLimit(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		result := s.limiter.check(ip)
		if !result.Allowed {
			secs := int(math.Ceil(result.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			s.log(r).Warn("request rejected", "ip", ip, "reason", result.Reason)
			writeError(w, http.StatusTooManyRequests, result.Reason)
			return
		}
		handler(w, r)
	}
}

// VerifyPassword checks if the provided password matches the stored hash.
func (s *Server) VerifyPassword(password string) (bool, error) {
	return auth.VerifyPassword(password, s.passwordHash)
}

// tokenExpiry is how long tokens are valid.
const tokenExpiry = 24 * time.Hour

// GenerateToken creates a new authentication token.
func (s *Server) GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	token := hex.EncodeToString(bytes)

	s.mu.Lock()
	s.tokens[token] = time.Now().Add(tokenExpiry)
	s.mu.Unlock()

	return token, nil
}

// ValidateToken checks if a token is valid and not expired.
func (s *Server) ValidateToken(token string) bool {
	if token == "" {
		return false
	}

	s.mu.RLock()
	expiry, exists := s.tokens[token]
	s.mu.RUnlock()

	if !exists {
		return false
	}

	return time.Now().Before(expiry)
}

// RevokeToken removes a token from the valid tokens map.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// cleanup periodically removes expired tokens and rate limit entries.
func (s *Server) cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			for token, expiry := range s.tokens {
				if now.After(expiry) {
					delete(s.tokens, token)
				}
			}
			s.mu.Unlock()
			s.limiter.cleanup()
		}
	}
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAuth handles POST /auth for password authentication. The password
// is read from a JSON body or a form field.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var password string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		password = body.Password
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		password = r.FormValue("password")
	}
	if password == "" {
		writeError(w, http.StatusBadRequest, "password required")
		return
	}

	ip := extractIP(r)
	valid, err := s.VerifyPassword(password)
	if err != nil {
		s.log(r).Error("password verification failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !valid {
		s.limiter.recordFailure(ip)
		s.log(r).Warn("invalid password", "ip", ip)
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}
	s.limiter.recordSuccess(ip)

	token, err := s.GenerateToken()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// handleSimulate handles POST /api/simulate.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, err := unary.DecodeRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.sim.Simulate(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		s.log(r).Warn("simulation failed", "status", status, "error", err)
		writeError(w, status, err.Error())
		return
	}

	s.log(r).Info("simulated", "initial_tape", resp.InitialTape, "final_tape", resp.FinalTape, "steps", resp.Steps)
	writeJSON(w, http.StatusOK, resp)
}

// doneEvent is the payload of the final replay event.
type doneEvent struct {
	InitialTape string `json:"initial_tape"`
	FinalTape   string `json:"final_tape"`
	Steps       int    `json:"steps"`
}

// handleReplay handles GET /api/replay?a=&b=&speed_ms= as a server-sent
// event stream: one "transition" event per step, paced by speed_ms, then
// a single "done" event.
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query()
	req := unary.Request{A: query.Get("a"), B: query.Get("b")}
	if raw := query.Get("speed_ms"); raw != "" {
		speed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid speed_ms %q", raw))
			return
		}
		if speed > MaxReplaySpeed {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("speed_ms exceeds maximum of %d", MaxReplaySpeed))
			return
		}
		req.SpeedMS = &speed
	}

	resp, err := s.sim.Simulate(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	delay := time.Duration(req.Speed()) * time.Millisecond
	ctx := r.Context()
	for i, tr := range resp.Transitions {
		if i > 0 && delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				s.log(r).Debug("replay abandoned", "sent", i, "steps", resp.Steps)
				return
			case <-timer.C:
			}
		}
		if err := writeEvent(w, "transition", tr); err != nil {
			return
		}
		flusher.Flush()
	}

	writeEvent(w, "done", doneEvent{
		InitialTape: resp.InitialTape,
		FinalTape:   resp.FinalTape,
		Steps:       resp.Steps,
	})
	flusher.Flush()
}

// writeEvent writes one SSE event with a JSON payload.
func writeEvent(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

// tableRule is one row of the /api/table document.
type tableRule struct {
	State string `json:"state"`
	Read  string `json:"read"`
	Next  string `json:"next"`
	Write string `json:"write"`
	Move  string `json:"move"`
}

// tableDocument is the /api/table response.
type tableDocument struct {
	Start  string      `json:"start"`
	Accept string      `json:"accept"`
	Rules  []tableRule `json:"rules"`
}

// handleTable handles GET /api/table.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := s.table.Rules()
	doc := tableDocument{
		Start:  s.table.Start().String(),
		Accept: s.table.Accept().String(),
		Rules:  make([]tableRule, len(entries)),
	}
	for i, e := range entries {
		doc.Rules[i] = tableRule{
			State: e.State.String(),
			Read:  e.Read.String(),
			Next:  e.Next.String(),
			Write: e.Write.String(),
			Move:  e.Move.String(),
		}
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleStatic serves the embedded replay client.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if s.assets == nil {
		http.NotFound(w, r)
		return
	}
	http.FileServerFS(s.assets).ServeHTTP(w, r)
}

// statusFor maps a simulation error to an HTTP status.
func statusFor(err error) int {
	var (
		inputErr  *unary.InputError
		tooLarge  *unary.TooLargeError
		remoteErr *runner.RemoteError
	)
	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge), errors.Is(err, machine.ErrOperandTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &remoteErr):
		switch remoteErr.ExitCode {
		case unary.ExitInput:
			return http.StatusBadRequest
		case unary.ExitTooLarge:
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusUnprocessableEntity
	case errors.Is(err, machine.ErrUndefinedTransition),
		errors.Is(err, machine.ErrStepLimit),
		errors.Is(err, machine.ErrNegativeOperand):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, runner.ErrStart), errors.Is(err, runner.ErrBadOutput):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	unary.WriteJSON(w, v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, unary.ErrorResponse{Error: msg})
}
