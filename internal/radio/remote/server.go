package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"airadio/internal/radio/session"
	"airadio/internal/radio/status"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Controls is the part of a session the remote may drive.
type Controls interface {
	Status() session.Status
	Skip() bool
	Favorite() bool
	ToggleMute() bool
	SetVolume(v float64)
	SetSleepTimer(d time.Duration)
	Close()
	Subscribe(buffer int) *status.Listener[session.Status]
	Unsubscribe(l *status.Listener[session.Status])
}

type Server struct {
	controls Controls
	log      *logrus.Entry
}

func NewServer(controls Controls, log *logrus.Entry) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Server{controls: controls, log: log.WithField("component", "remote")}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/skip", s.handleSkip)
		r.Post("/favorite", s.handleFavorite)
		r.Post("/mute", s.handleMute)
		r.Post("/volume", s.handleVolume)
		r.Post("/sleep", s.handleSleep)
		r.Post("/close", s.handleClose)
	})

	return r
}

// ListenAndServe serves the remote on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr: addr,
		Handler: s.Router(
			middleware.RealIP,
			requestLogger(s.log),
			middleware.Recoverer,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("Remote control listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"duration": time.Since(start),
			}).Debug("Remote request")
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "airadio",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controls.Status())
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	if !s.controls.Skip() {
		writeError(w, http.StatusConflict, "nothing to skip")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleFavorite(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"changed": s.controls.Favorite(),
	})
}

func (s *Server) handleMute(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"muted": s.controls.ToggleMute()})
}

type volumeRequest struct {
	Volume *float64 `json:"volume"`
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req volumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Volume == nil || *req.Volume < 0 || *req.Volume > 1 {
		writeError(w, http.StatusBadRequest, "volume must be between 0 and 1")
		return
	}
	s.controls.SetVolume(*req.Volume)
	writeJSON(w, http.StatusOK, s.controls.Status())
}

type sleepRequest struct {
	Minutes *float64 `json:"minutes"`
}

func (s *Server) handleSleep(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req sleepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	var d time.Duration
	if req.Minutes != nil {
		if *req.Minutes < 0 {
			writeError(w, http.StatusBadRequest, "minutes must not be negative")
			return
		}
		d = time.Duration(*req.Minutes * float64(time.Minute))
	}
	s.controls.SetSleepTimer(d)
	writeJSON(w, http.StatusOK, s.controls.Status())
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	s.controls.Close()
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}
