// Package server is the HTTP service rendering countdown GIFs and storing templates
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
	"github.com/wader/ffcountdown/internal/countdown"
	"github.com/wader/ffcountdown/internal/facade"
	"github.com/wader/ffcountdown/internal/store"
)

// Server handlers, Now defaults to time.Now
type Server struct {
	Store   store.Store
	Encoder string
	Now     func() time.Time
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Router returns all routes
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(limitBody)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Origin"},
		MaxAge:         300,
	}))

	r.Get("/ping", HandlePing())
	r.Get("/add", HandleAdd())
	r.Get("/countdown.gif", s.HandleCountdown())

	r.Route("/api/v1/templates", func(r chi.Router) {
		r.Get("/", s.HandleListTemplates())
		r.Post("/", s.HandleCreateTemplate())
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.HandleGetTemplate())
			r.Delete("/", s.HandleDeleteTemplate())
			r.Get("/countdown.gif", s.HandleTemplateCountdown())
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logrus.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start),
			"request_id": middleware.GetReqID(r.Context()),
		}).Info("request")
	})
}

func statusForError(err error) int {
	var ee *facade.EngineError
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidID):
		return http.StatusNotFound
	case errors.As(err, &ee):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	log := logrus.WithError(err).WithField("path", r.URL.Path)
	if status == http.StatusInternalServerError {
		log.Error("Request failed")
	} else {
		log.Warn("Request failed")
	}
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": err.Error()})
}

func badRequest(w http.ResponseWriter, r *http.Request, format string, v ...interface{}) {
	renderError(w, r, &facade.EngineError{Op: "request", Err: fmt.Errorf(format, v...)})
}

func HandlePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"message": facade.Ping()})
	}
}

func HandleAdd() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		a, err := strconv.ParseFloat(q.Get("a"), 64)
		if err != nil {
			badRequest(w, r, "invalid a %q", q.Get("a"))
			return
		}
		b, err := strconv.ParseFloat(q.Get("b"), 64)
		if err != nil {
			badRequest(w, r, "invalid b %q", q.Get("b"))
			return
		}
		render.JSON(w, r, map[string]float64{"result": facade.Add(a, b)})
	}
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}

// startAndFrames reads until (RFC3339) and frames query parameters
func (s *Server) startAndFrames(r *http.Request) (countdown.Moment, int, error) {
	start := facade.DefaultStart
	if u := r.URL.Query().Get("until"); u != "" {
		t, err := time.Parse(time.RFC3339, u)
		if err != nil {
			return countdown.Moment{}, 0, fmt.Errorf("invalid until %q, should be RFC3339", u)
		}
		start = countdown.Until(s.now(), t)
	}
	frames, err := queryInt(r, "frames", facade.DefaultFrames)
	if err != nil {
		return countdown.Moment{}, 0, err
	}
	if frames < 1 || frames > MaxFrames {
		return countdown.Moment{}, 0, fmt.Errorf("frames %d not in 1-%d", frames, MaxFrames)
	}
	return start, frames, nil
}

func (s *Server) renderGIF(w http.ResponseWriter, r *http.Request, opts facade.CountdownOptions) {
	start, frames, err := s.startAndFrames(r)
	if err != nil {
		badRequest(w, r, "%v", err)
		return
	}
	if err := checkLimits(opts.CountdownTemplateOptions(), frames); err != nil {
		badRequest(w, r, "%v", err)
		return
	}
	if opts.Encoder == "" {
		opts.Encoder = s.Encoder
	}
	c, err := facade.NewCountdown(opts)
	if err != nil {
		renderError(w, r, err)
		return
	}
	buf := &bytes.Buffer{}
	if err := c.Render(r.Context(), start, frames, buf); err != nil {
		renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		logrus.WithError(err).Debug("Failed to write response")
	}
}

// HandleCountdown renders a default layout countdown from query parameters
func (s *Server) HandleCountdown() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		width, err := queryInt(r, "width", 300)
		if err != nil {
			badRequest(w, r, "%v", err)
			return
		}
		height, err := queryInt(r, "height", 100)
		if err != nil {
			badRequest(w, r, "%v", err)
			return
		}
		bg := r.URL.Query().Get("bgColor")
		if bg == "" {
			bg = "#000000"
		}
		s.renderGIF(w, r, facade.CountdownOptions{
			CreationOptions: facade.CreationOptions{Width: width, Height: height, BgColor: bg},
		})
	}
}

type createTemplateRequest struct {
	Name    string            `json:"name"`
	Options countdown.Options `json:"options"`
}

func templateCountdownOptions(o countdown.Options) facade.CountdownOptions {
	return facade.CountdownOptions{
		CreationOptions: facade.CreationOptions{Width: o.Width, Height: o.Height, BgColor: o.BgColor},
		Labels:          o.Labels,
		Digits:          o.Digits,
	}
}

func (s *Server) HandleCreateTemplate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTemplateRequest
		d := json.NewDecoder(r.Body)
		d.DisallowUnknownFields()
		if err := d.Decode(&req); err != nil {
			badRequest(w, r, "invalid template: %v", err)
			return
		}
		if req.Name == "" {
			badRequest(w, r, "name is required")
			return
		}
		if err := checkLimits(req.Options, facade.DefaultFrames); err != nil {
			badRequest(w, r, "%v", err)
			return
		}
		// prepare once to report invalid options now instead of at render time
		opts := templateCountdownOptions(req.Options)
		opts.Encoder = "std"
		if _, err := facade.NewCountdown(opts); err != nil {
			renderError(w, r, err)
			return
		}

		t := &store.Template{Name: req.Name, Options: req.Options}
		id, err := s.Store.Create(r.Context(), t)
		if err != nil {
			renderError(w, r, err)
			return
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]string{"id": id})
	}
}

func (s *Server) HandleListTemplates() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts, err := s.Store.List(r.Context())
		if err != nil {
			renderError(w, r, err)
			return
		}
		if ts == nil {
			ts = []*store.Template{}
		}
		render.JSON(w, r, ts)
	}
}

func (s *Server) HandleGetTemplate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := s.Store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			renderError(w, r, err)
			return
		}
		render.JSON(w, r, t)
	}
}

func (s *Server) HandleDeleteTemplate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			renderError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) HandleTemplateCountdown() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := s.Store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			renderError(w, r, err)
			return
		}
		s.renderGIF(w, r, templateCountdownOptions(t.Options))
	}
}
