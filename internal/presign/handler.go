package presign

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	allowOrigin  = "*"
	allowHeaders = "authorization, x-client-info, apikey, content-type"
	allowMethods = "POST, OPTIONS"
)

var errMissingFileName = errors.New("fileName is required")

type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
}

// Handler answers presigned-upload requests. A nil Presigner means storage
// is not configured; every request then fails with 400.
type Handler struct {
	Presigner Presigner
	Expiry    time.Duration
	// NotConfigured is the message returned when Presigner is nil.
	NotConfigured string
}

type request struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

type response struct {
	PresignedURL string `json:"presignedUrl"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Register mounts the function at the root and at its hosted path.
func (h *Handler) Register(r chi.Router) {
	r.Use(cors)
	r.HandleFunc("/", h.serve)
	r.HandleFunc("/functions/v1/r2-presigned-upload", h.serve)
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
		w.Header().Set("Access-Control-Allow-Methods", allowMethods)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
		return
	}

	url, err := h.presign(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response{PresignedURL: url})
}

func (h *Handler) presign(r *http.Request) (string, error) {
	var req request
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<16)).Decode(&req); err != nil {
		return "", errors.New("invalid JSON body")
	}
	req.FileName = strings.TrimSpace(req.FileName)
	req.ContentType = strings.TrimSpace(req.ContentType)
	if req.FileName == "" {
		return "", errMissingFileName
	}

	if h.Presigner == nil {
		msg := h.NotConfigured
		if msg == "" {
			msg = "storage is not configured"
		}
		return "", errors.New(msg)
	}
	return h.Presigner.PresignPut(r.Context(), req.FileName, req.ContentType, h.Expiry)
}
