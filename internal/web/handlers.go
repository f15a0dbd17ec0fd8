// Package web serves the mood suggestion JSON API.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/genre"
	"github.com/justestif/moodtunes/internal/logger"
	"github.com/justestif/moodtunes/internal/recommend"
	"github.com/justestif/moodtunes/internal/suggest"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	suggest   *suggest.Service
	recommend *recommend.Service
	fallback  *genre.FallbackBuilder
	directory catalog.Directory
	log       *logger.Logger
	maxBody   int64
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *suggest.Service, rec *recommend.Service, fallback *genre.FallbackBuilder, dir catalog.Directory, log *logger.Logger) *Handlers {
	return &Handlers{
		suggest:   svc,
		recommend: rec,
		fallback:  fallback,
		directory: dir,
		log:       logger.OrNop(log),
		maxBody:   DefaultMaxUploadBytes,
	}
}

type textRequest struct {
	Text string `json:"text"`
}

type streamRequest struct {
	ImageBase64 string `json:"image_base64"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type fallbackResponse struct {
	Preferred string   `json:"preferred"`
	Genres    []string `json:"genres"`
}

type recommendationsResponse struct {
	Mood        string                `json:"mood"`
	Genre       string                `json:"genre"`
	Suggestions []catalog.SongSummary `json:"suggestions"`
}

// PredictText handles POST /api/emotion/text.
func (h *Handlers) PredictText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.suggest.PredictFromText(r.Context(), req.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PredictUpload handles POST /api/emotion/upload with a multipart "file" field.
func (h *Handlers) PredictUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := r.ParseMultipartForm(h.maxBody); err != nil {
		h.writeError(w, bodyError(err, "invalid multipart form"))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, _, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: missing file field", suggest.ErrInvalidInput))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: reading upload", suggest.ErrInvalidInput))
		return
	}

	res, err := h.suggest.PredictFromImageBytes(r.Context(), data)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PredictStream handles POST /api/emotion/stream with a base64 image.
func (h *Handlers) PredictStream(w http.ResponseWriter, r *http.Request) {
	var req streamRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.suggest.PredictFromBase64Image(r.Context(), req.ImageBase64)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Health handles GET /api/health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.suggest.Health(r.Context()))
}

// ListMoods handles GET /api/moods.
func (h *Handlers) ListMoods(w http.ResponseWriter, r *http.Request) {
	moods, err := h.directory.ListMoods(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if moods == nil {
		moods = []catalog.MoodDoc{}
	}
	writeJSON(w, http.StatusOK, moods)
}

// ListGenres handles GET /api/genres.
func (h *Handlers) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.directory.ListGenres(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if genres == nil {
		genres = []catalog.GenreDoc{}
	}
	writeJSON(w, http.StatusOK, genres)
}

// GenreFallback handles GET /api/genres/fallback?preferred=.
func (h *Handlers) GenreFallback(w http.ResponseWriter, r *http.Request) {
	genres := h.fallback.Build(r.Context(), r.URL.Query().Get("preferred"))
	writeJSON(w, http.StatusOK, fallbackResponse{
		Preferred: genres[0],
		Genres:    genres,
	})
}

// Recommendations handles GET /api/recommendations?mood=&genre=&limit=.
func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, fmt.Errorf("%w: limit must be a non-negative integer", suggest.ErrInvalidInput))
			return
		}
		limit = n
	}

	moodName, genreName := q.Get("mood"), q.Get("genre")
	writeJSON(w, http.StatusOK, recommendationsResponse{
		Mood:        moodName,
		Genre:       genreName,
		Suggestions: h.recommend.Recommend(r.Context(), moodName, genreName, limit),
	})
}

// decodeJSON reads a size-limited JSON body into dst, writing the error
// response itself when it fails.
func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, bodyError(err, "malformed JSON body"))
		return false
	}
	return true
}

// bodyError maps a body read failure to errBodyTooLarge or ErrInvalidInput.
func bodyError(err error, detail string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errBodyTooLarge
	}
	return fmt.Errorf("%w: %s", suggest.ErrInvalidInput, detail)
}

var errBodyTooLarge = errors.New("request body too large")

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Detail: err.Error()})
	case errors.Is(err, suggest.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
	case errors.Is(err, catalog.ErrUnavailable):
		h.log.Warn("catalog unavailable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: "catalog unavailable"})
	default:
		h.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
