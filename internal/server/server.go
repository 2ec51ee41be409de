// Package server exposes the contract form controller over HTTP. It serves a
// single form instance and is meant to run next to the page that embeds it.
package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/edesteves10/contrat-cond/internal/logging"
	"github.com/edesteves10/contrat-cond/pkg/export"
	"github.com/edesteves10/contrat-cond/pkg/form"
	"github.com/edesteves10/contrat-cond/pkg/lookup"
	"github.com/edesteves10/contrat-cond/pkg/mask"
	"github.com/edesteves10/contrat-cond/pkg/model"
)

const defaultSettleTimeout = 15 * time.Second

// Server routes HTTP requests to a form controller.
type Server struct {
	ctl           *form.Controller
	cnpj          lookup.CNPJService
	cep           lookup.CEPService
	logger        logging.Logger
	settleTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLookupClient enables the direct lookup routes.
func WithLookupClient(client *lookup.Client) Option {
	return func(s *Server) {
		if client != nil {
			s.cnpj = client
			s.cep = client
		}
	}
}

// WithLogger attaches a logger for request logs.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSettleTimeout bounds how long an input request with settle=true waits
// for lookups.
func WithSettleTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.settleTimeout = d
		}
	}
}

// New builds a server over ctl.
func New(ctl *form.Controller, options ...Option) *Server {
	s := &Server{
		ctl:           ctl,
		logger:        logging.Nop{},
		settleTimeout: defaultSettleTimeout,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.cnpj == nil || s.cep == nil {
		client := lookup.NewClient(lookup.WithLogger(s.logger))
		s.cnpj, s.cep = client, client
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(assignRequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/lookup/cnpj/{digits}", s.lookupCNPJ)
		api.Get("/lookup/cep/{digits}", s.lookupCEP)

		api.Route("/form", func(fr chi.Router) {
			fr.Get("/", s.view)
			fr.Post("/input", s.input)
			fr.Post("/clear", s.clear)
			fr.Post("/edit", s.loadForEdit)
			fr.Post("/validate", s.validate)
			fr.Post("/submit", s.submit)
			fr.Post("/preview", s.preview)
			fr.Post("/preview/record", s.previewRecord)
			fr.Delete("/preview", s.hidePreview)
			fr.Get("/export", s.export)
		})

		api.Post("/preferences/contrast", s.toggleContrast)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		ctx := logging.WithArgs(r.Context(), "request_id", middleware.GetReqID(r.Context()))
		s.logger.InfoCtx(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) view(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctl.View())
}

func (s *Server) input(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_JSON", err.Error(), nil)
		return
	}
	if !knownField(req.Field) {
		writeError(w, r, http.StatusBadRequest, "UNKNOWN_FIELD", "unknown field "+strconv.Quote(req.Field), nil)
		return
	}
	s.ctl.Set(req.Field, req.Value)

	if settle, _ := strconv.ParseBool(r.URL.Query().Get("settle")); settle {
		ctx, cancel := context.WithTimeout(r.Context(), s.settleTimeout)
		defer cancel()
		if err := s.ctl.Settle(ctx); err != nil {
			writeError(w, r, http.StatusGatewayTimeout, "LOOKUP_TIMEOUT", err.Error(), nil)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.ctl.View())
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctl.Clear())
}

func (s *Server) loadForEdit(w http.ResponseWriter, r *http.Request) {
	var record model.Record
	if err := readJSON(r, &record); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_JSON", err.Error(), nil)
		return
	}
	view, err := s.ctl.LoadForEdit(record)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	result := s.ctl.Validate()
	writeJSON(w, http.StatusOK, map[string]any{
		"request_id": requestID(r),
		"result":     result,
		"view":       s.ctl.View(),
	})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	sub, err := s.ctl.Submit(r.Context())
	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, r, http.StatusUnprocessableEntity, "INVALID_FORM", verr.Error(), verr.Result.Issues)
		return
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"request_id": requestID(r),
		"submission": sub,
		"body":       sub.Encode(),
	})
}

func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	doc, err := s.ctl.Preview()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "PREVIEW_FAILED", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) previewRecord(w http.ResponseWriter, r *http.Request) {
	var record model.Record
	if err := readJSON(r, &record); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_JSON", err.Error(), nil)
		return
	}
	doc, err := s.ctl.PreviewRecord(record)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "PREVIEW_FAILED", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) hidePreview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctl.HidePreview())
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	doc, err := s.ctl.Export(r.Context(), &buf)
	switch {
	case errors.Is(err, export.ErrEmptyDocument):
		writeError(w, r, http.StatusConflict, "EMPTY_DOCUMENT", err.Error(), nil)
		return
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "EXPORT_FAILED", err.Error(), nil)
		return
	}
	w.Header().Set("content-type", "application/pdf")
	w.Header().Set("content-disposition", `attachment; filename="`+doc.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) toggleContrast(w http.ResponseWriter, r *http.Request) {
	view, err := s.ctl.ToggleContrast()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "PREFERENCES_FAILED", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) lookupCNPJ(w http.ResponseWriter, r *http.Request) {
	digits := mask.Digits(chi.URLParam(r, "digits"))
	company, err := s.cnpj.LookupCNPJ(r.Context(), digits)
	if err != nil {
		s.writeLookupError(w, r, err, form.MessageCNPJNotFound, form.MessageCNPJUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (s *Server) lookupCEP(w http.ResponseWriter, r *http.Request) {
	digits := mask.Digits(chi.URLParam(r, "digits"))
	address, err := s.cep.LookupCEP(r.Context(), digits)
	if err != nil {
		s.writeLookupError(w, r, err, form.MessageCEPNotFound, form.MessageCEPUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, address)
}

func (s *Server) writeLookupError(w http.ResponseWriter, r *http.Request, err error, notFound, unavailable string) {
	switch {
	case errors.Is(err, lookup.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	case errors.Is(err, lookup.ErrNotFound):
		message := lookup.ServiceMessage(err)
		if message == "" {
			message = notFound
		}
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", message, nil)
	default:
		writeError(w, r, http.StatusBadGateway, "UNAVAILABLE", unavailable, nil)
	}
}

func knownField(name string) bool {
	for _, field := range model.FieldNames() {
		if field == name {
			return true
		}
	}
	return false
}
