// Package server exposes the routing pipeline over HTTP.
//
// It offers a REST API for clients that hold a captured frame: analyze-only
// inspection, full routing, multipart upload, and forced-route endpoints that
// bypass the interpreter. Health endpoints for container orchestration are
// served from the same listener.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/percepteye/semrouter/internal/frame"
	"github.com/percepteye/semrouter/internal/router"
)

const serviceName = "PerceptEye Semantic Router"

// Server serves the routing API on a single HTTP listener.
type Server struct {
	port         int
	router       *router.Router
	fetchTimeout time.Duration
	ready        atomic.Bool
	server       *http.Server
}

// New creates a Server on the given port. fetchTimeout bounds image downloads
// for requests that pass an image by URL.
func New(port int, r *router.Router, fetchTimeout time.Duration) *Server {
	return &Server{port: port, router: r, fetchTimeout: fetchTimeout}
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// routes builds the request mux. Split out from ListenAndServe so tests can
// exercise handlers without a listener.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleInfo)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /route", s.handleRoute)
	mux.HandleFunc("POST /route/upload", s.handleRouteUpload)

	mux.HandleFunc("POST /route/face-recognition", s.forcedRoute(frame.RouteFaceRecognitionTTS))
	mux.HandleFunc("POST /route/sign-language", s.forcedRoute(frame.RouteSignLanguage))
	mux.HandleFunc("POST /route/scene", s.forcedRoute(frame.RouteSceneDescription))

	// Deprecated aliases kept for clients that predate the current route
	// names. Both map to the face recognition + TTS backend.
	mux.HandleFunc("POST /route/speech", s.deprecatedRoute("/route/speech", frame.RouteFaceRecognitionTTS))
	mux.HandleFunc("POST /route/people", s.deprecatedRoute("/route/people", frame.RouteFaceRecognitionTTS))

	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

// ListenAndServe starts the HTTP server. It blocks until the context is
// cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		slog.Info("http server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (s *Server) Close() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleInfo describes the service.
//
// @Summary     Service information
// @Description Returns the service name and available endpoints.
// @Tags        meta
// @Produce     json
// @Success     200  {object}  map[string]interface{}
// @Router      / [get]
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service": serviceName,
		"endpoints": map[string]string{
			"analyze":       "POST /analyze",
			"route":         "POST /route",
			"upload":        "POST /route/upload",
			"face_forced":   "POST /route/face-recognition",
			"sign_forced":   "POST /route/sign-language",
			"scene_forced":  "POST /route/scene",
			"health":        "GET /health",
			"documentation": "GET /swagger/index.html",
		},
	})
}

// handleHealth reports service health.
//
// @Summary     Health check
// @Tags        meta
// @Produce     json
// @Success     200  {object}  map[string]string
// @Router      /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"router": "operational",
	})
}

// handleHealthz is the readiness probe used by container orchestration.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze runs interpretation only and returns the judgment. No
// capability backend is ever invoked on this path.
//
// @Summary     Analyze a frame without routing
// @Description Runs the multimodal interpreter and returns the routing judgment. Backends are never called.
// @Tags        routing
// @Accept      json
// @Produce     json
// @Param       request  body      analyzeRequest  true  "Frame to analyze"
// @Success     200  {object}  frame.Judgment
// @Failure     400  {object}  map[string]string  "Invalid input"
// @Router      /analyze [post]
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := s.requestFromJSON(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out := s.router.Route(r.Context(), req, false)
	writeJSON(w, http.StatusOK, out.Decision)
}

// handleRoute runs the full pipeline and returns the outcome envelope.
//
// @Summary     Route a frame to a capability backend
// @Description Interprets the frame, applies the confidence gate, and invokes at most one backend.
// @Tags        routing
// @Accept      json
// @Produce     json
// @Param       request  body      analyzeRequest  true  "Frame to route"
// @Success     200  {object}  frame.Outcome
// @Failure     400  {object}  map[string]string  "Invalid input"
// @Router      /route [post]
func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	req, err := s.requestFromJSON(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.router.Route(r.Context(), req, true))
}

// handleRouteUpload accepts a multipart form with image and audio files.
//
// @Summary     Route an uploaded frame
// @Description Multipart variant of /route. Accepts an image file, an optional audio file, and an optional audio_description field.
// @Tags        routing
// @Accept      multipart/form-data
// @Produce     json
// @Param       image              formData  file    false  "Image file"
// @Param       audio              formData  file    false  "Audio file"
// @Param       audio_description  formData  string  false  "Audio transcript or description"
// @Success     200  {object}  frame.Outcome
// @Failure     400  {object}  map[string]string  "Invalid input"
// @Router      /route/upload [post]
func (s *Server) handleRouteUpload(w http.ResponseWriter, r *http.Request) {
	req, err := requestFromMultipart(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.router.Route(r.Context(), req, true))
}

// forcedRoute returns a handler that bypasses the interpreter and calls the
// given backend directly.
//
// @Summary     Force a specific route
// @Description Bypasses semantic routing and invokes the named backend directly. Useful for isolating backend failures.
// @Tags        routing
// @Accept      json
// @Produce     json
// @Param       request  body      analyzeRequest  true  "Frame to send"
// @Success     200  {object}  frame.Outcome
// @Failure     400  {object}  map[string]string  "Invalid input"
// @Router      /route/face-recognition [post]
// @Router      /route/sign-language [post]
// @Router      /route/scene [post]
func (s *Server) forcedRoute(route frame.RouteKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := s.requestFromJSON(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		// Every backend needs an image, and on a forced route there is no
		// judgment to skip on. Reject as an input error rather than dressing
		// it up as a backend failure.
		if !req.HasImage() {
			writeError(w, http.StatusBadRequest, "image is required for forced routing")
			return
		}
		writeJSON(w, http.StatusOK, s.router.ForceCall(r.Context(), route, req))
	}
}

func (s *Server) deprecatedRoute(path string, route frame.RouteKind) http.HandlerFunc {
	forced := s.forcedRoute(route)
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Warn("deprecated endpoint called", "path", path, "use", "/route/face-recognition")
		forced(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
