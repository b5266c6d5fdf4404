// Package server serves the underwriting web form and its JSON API.
package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/property-underwriting/internal/config"
	"github.com/iwvelando/property-underwriting/internal/proforma"
	"github.com/iwvelando/property-underwriting/pkg/constants"
	"github.com/iwvelando/property-underwriting/pkg/output"
	"github.com/iwvelando/property-underwriting/pkg/underwriting"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed static/*
var staticFiles embed.FS

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the web UI and underwriting API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Route("/api", func(r chi.Router) {
		r.Get("/defaults", h.handleDefaults)
		r.Post("/evaluate", h.handleEvaluate)
		r.Post("/evaluate/upload", h.handleEvaluateUpload)
		r.Post("/export", h.handleExport)
		r.Get("/version", h.handleVersion)
	})

	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	router.Handle("/*", http.FileServer(http.FS(sub)))

	return router
}

type evaluateRequest struct {
	Name string `json:"name"`
	underwriting.Inputs
}

type evaluateResponse struct {
	Name     string               `json:"name,omitempty"`
	Inputs   underwriting.Inputs  `json:"inputs"`
	Outputs  underwriting.Outputs `json:"outputs"`
	Warnings []string             `json:"warnings,omitempty"`
	CSV      string               `json:"csv"`
	Duration string               `json:"duration"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (h *handler) handleDefaults(w http.ResponseWriter, r *http.Request) {
	conf, err := config.Default()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err, "server.handleDefaults")
		return
	}

	h.writeJSON(w, http.StatusOK, evaluateRequest{
		Name:   conf.Property.Name,
		Inputs: conf.Inputs(),
	})
}

func (h *handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeInputs(w, r, "server.handleEvaluate")
	if !ok {
		return
	}
	h.evaluate(w, *config.FromInputs(req.Name, req.Inputs), "server.handleEvaluate")
}

func (h *handler) handleEvaluateUpload(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEvaluateUpload"

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Errorf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Errorf("failed to parse upload: %w", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, errors.New("missing scenario file"), op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Errorf("failed to read scenario: %w", err), op)
		return
	}

	conf, err := config.LoadConfigurationFromReader(&buf)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err, op)
		return
	}

	h.evaluate(w, *conf, op)
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExport"

	req, ok := h.decodeInputs(w, r, op)
	if !ok {
		return
	}

	yamlBytes, err := yaml.Marshal(config.FromInputs(req.Name, req.Inputs))
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Errorf("failed to encode scenario: %w", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// decodeInputs reads a JSON scenario. Fields missing from the body keep their
// reference values.
func (h *handler) decodeInputs(w http.ResponseWriter, r *http.Request, op string) (evaluateRequest, bool) {
	req := evaluateRequest{
		Name:   constants.DefaultPropertyName,
		Inputs: underwriting.DefaultInputs(),
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Errorf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return req, false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Errorf("failed to decode inputs: %w", err), op)
		return req, false
	}
	return req, true
}

func (h *handler) evaluate(w http.ResponseWriter, conf config.Configuration, op string) {
	result, err := proforma.GetProForma(h.logger, conf)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, underwriting.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		h.respondError(w, status, err, op)
		return
	}

	h.logger.Info("pro-forma computed",
		zap.String("op", op),
		zap.String("scenario", result.Name),
		zap.Int("units", len(result.Inputs.UnitMonthlyRents)),
		zap.Int("warnings", len(result.Warnings)),
		zap.Duration("duration", result.Duration),
	)

	h.writeJSON(w, http.StatusOK, evaluateResponse{
		Name:     result.Name,
		Inputs:   result.Inputs,
		Outputs:  result.Outputs,
		Warnings: result.Warnings,
		CSV:      output.CsvString(result.Outputs),
		Duration: result.Duration.Round(time.Microsecond).String(),
	})
}

func (h *handler) respondError(w http.ResponseWriter, status int, err error, op string) {
	h.logger.Error("underwriting request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.Error(err),
	)

	resp := errorResponse{Error: err.Error()}
	if errors.Is(err, underwriting.ErrInvalidInput) {
		var inputErr *underwriting.InputError
		for _, e := range multierr.Errors(errors.Unwrap(err)) {
			if errors.As(e, &inputErr) {
				resp.Details = append(resp.Details, inputErr.Error())
			}
		}
	}

	h.writeJSON(w, status, resp)
}

// writeJSON encodes payload before committing status so an encoding failure
// still reaches the client as a 500.
func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		h.logger.Error("failed to encode JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}` + "\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}
