package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"vidscribe/internal/api"
	"vidscribe/internal/config"
	"vidscribe/internal/history"
	"vidscribe/internal/logging"
	"vidscribe/internal/services"
)

const missingURLMessage = "Missing 'url' parameter"

type apiServer struct {
	cfg     *config.Config
	bind    string
	logger  *slog.Logger
	daemon  *Daemon
	history *api.HistoryService
	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		cfg:    cfg,
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}
	if d.services.History != nil {
		srv.history = api.NewHistoryService(d.services.History)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/extract_audio", srv.handleExtractAudio)
	mux.HandleFunc("/api/get_youtube_transcript", srv.handleTranscript)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/history", srv.handleHistory)
	mux.HandleFunc("/files/", srv.handleFile)
	mux.HandleFunc("/health", srv.handleHealth)

	srv.handler = requestIDMiddleware(accessLogMiddleware(srv.logger, mux))
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.writeTimeout(),
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.listener = listener
	s.server = server
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// writeTimeout leaves room for the longest engine invocation; zero disables it.
func (s *apiServer) writeTimeout() time.Duration {
	if s.cfg.Engine.CommandTimeout <= 0 {
		return 0
	}
	return 2*time.Duration(s.cfg.Engine.CommandTimeout)*time.Second + time.Minute
}

func (s *apiServer) stop() {
	s.mu.Lock()
	server, listener := s.server, s.listener
	s.server, s.listener = nil, nil
	s.mu.Unlock()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}
	if listener != nil {
		_ = listener.Close()
	}
}

func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

func (s *apiServer) handleExtractAudio(w http.ResponseWriter, r *http.Request) {
	if !s.allowMethods(w, r, http.MethodGet) {
		return
	}
	videoURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if videoURL == "" {
		s.writeError(w, http.StatusBadRequest, missingURLMessage)
		return
	}
	format := strings.TrimSpace(r.URL.Query().Get("format"))

	ctx := services.WithOperation(r.Context(), string(history.KindAudio))
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("audio extraction requested", logging.String("url", videoURL), logging.String("format", format))

	started := time.Now()
	result, err := s.daemon.services.Audio.Extract(ctx, videoURL, format)
	entry := history.Entry{
		Kind:      history.KindAudio,
		URL:       videoURL,
		Format:    format,
		StartedAt: started,
	}
	if err != nil {
		s.recordFailure(ctx, entry, err)
		s.writeJSON(w, services.HTTPStatus(err), api.AudioResponse{Error: api.StringPtr(err.Error())})
		return
	}

	downloadURL := s.downloadURL(r, result.RelativePath)
	entry.Format = result.Format
	entry.Title = result.Title
	entry.ServerPath = result.ServerPath
	entry.RelativePath = result.RelativePath
	s.record(ctx, entry, history.StatusSucceeded)

	s.writeJSON(w, http.StatusOK, api.AudioResponse{
		AudioDownloadURL: api.StringPtr(downloadURL),
		AudioServerPath:  api.StringPtr(result.ServerPath),
	})
}

func (s *apiServer) handleTranscript(w http.ResponseWriter, r *http.Request) {
	if !s.allowMethods(w, r, http.MethodGet) {
		return
	}
	videoURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if videoURL == "" {
		s.writeError(w, http.StatusBadRequest, missingURLMessage)
		return
	}

	ctx := services.WithOperation(r.Context(), string(history.KindTranscript))
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("transcript requested", logging.String("url", videoURL))

	started := time.Now()
	result, err := s.daemon.services.Transcripts.Fetch(ctx, videoURL)
	entry := history.Entry{
		Kind:      history.KindTranscript,
		URL:       videoURL,
		StartedAt: started,
	}
	if err != nil {
		s.recordFailure(ctx, entry, err)
		status := services.HTTPStatus(err)
		s.writeJSON(w, status, api.TranscriptError{Error: err.Error()})
		return
	}

	entry.Language = result.Language
	s.record(ctx, entry, history.StatusSucceeded)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(result.Text)); err != nil {
		logger.Debug("failed to write transcript response", logging.Error(err))
	}
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "healthy"})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !s.allowMethods(w, r, http.MethodGet) {
		return
	}
	status := s.daemon.Status(r.Context())
	payload := api.DaemonStatus{
		Running:       status.Running,
		PID:           status.PID,
		Bind:          status.Bind,
		DownloadsDir:  s.cfg.Paths.DownloadsDir,
		HistoryDBPath: status.HistoryDBPath,
		LockFilePath:  status.LockFilePath,
		Proxy:         s.cfg.ProxyDisplay(),
		Dependencies:  api.FromDependencyStatuses(status.Dependencies),
		Checks:        api.FromCheckResults(status.Checks),
	}
	if !status.StartedAt.IsZero() {
		payload.StartedAt = status.StartedAt.UTC().Format(time.RFC3339)
	}
	if status.History != nil {
		stats := api.FromHistoryStats(*status.History)
		payload.History = &stats
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !s.allowMethods(w, r, http.MethodGet) {
		return
	}
	query := r.URL.Query()
	filter := history.Filter{
		Kind:   history.Kind(strings.TrimSpace(query.Get("kind"))),
		Status: history.Status(strings.TrimSpace(query.Get("status"))),
	}
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}
	items, err := s.history.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.HistoryListResponse{Items: items})
}

// downloadURL builds the absolute link for a produced artifact.
func (s *apiServer) downloadURL(r *http.Request, relative string) string {
	base := strings.TrimRight(strings.TrimSpace(s.cfg.Paths.PublicBaseURL), "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); forwarded == "http" || forwarded == "https" {
			scheme = forwarded
		}
		base = scheme + "://" + r.Host
	}
	segments := strings.Split(relative, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return base + "/files/" + strings.Join(segments, "/")
}

func (s *apiServer) record(ctx context.Context, entry history.Entry, status history.Status) {
	store := s.daemon.services.History
	if store == nil {
		return
	}
	entry.Status = status
	entry.FinishedAt = time.Now()
	if id, ok := services.RequestIDFromContext(ctx); ok {
		entry.RequestID = id
	}
	if _, err := store.Record(ctx, entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "failed to record history", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on "+s.cfg.HistoryPath()),
			logging.String(logging.FieldImpact, "operation missing from history"),
		)
	}
}

func (s *apiServer) recordFailure(ctx context.Context, entry history.Entry, err error) {
	entry.ErrorKind = services.Kind(err)
	entry.ErrorMessage = err.Error()
	logging.WithContext(ctx, s.logger).Error("operation failed",
		logging.Error(err),
		logging.String("error_kind", entry.ErrorKind),
		logging.String(logging.FieldEventType, string(entry.Kind)+"_failed"),
	)
	s.record(ctx, entry, history.StatusFailed)
}

func (s *apiServer) allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, method := range methods {
		if r.Method == method {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
