// Package suggest turns an emotional signal, detected from text or a face
// image, into a mood, a preferred genre and a ranked list of songs.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/classifier"
	"github.com/justestif/moodtunes/internal/genre"
	"github.com/justestif/moodtunes/internal/logger"
	"github.com/justestif/moodtunes/internal/mood"
	"github.com/justestif/moodtunes/internal/recommend"
)

// ErrInvalidInput is returned for empty or undecodable request payloads.
var ErrInvalidInput = errors.New("invalid input")

// TextClassifier returns a raw label for a piece of text.
type TextClassifier interface {
	ClassifyText(ctx context.Context, text string) (string, error)
	Ready(ctx context.Context) bool
}

// FaceClassifier returns the dominant raw label for a JPEG frame.
type FaceClassifier interface {
	ClassifyFace(ctx context.Context, jpeg []byte) (string, error)
}

// Recommender ranks songs for a mood and genre name.
type Recommender interface {
	Recommend(ctx context.Context, moodName, genreName string, limit int) []catalog.SongSummary
}

// Suggestion is the outcome of one inference request.
type Suggestion struct {
	Emotion     mood.Mood             `json:"emotion"`
	Genre       genre.Genre           `json:"genre"`
	Suggestions []catalog.SongSummary `json:"suggestions"`
}

// Health reports the availability of the service's collaborators.
type Health struct {
	Status          string `json:"status"`
	StoreConnected  bool   `json:"store_connected"`
	TextModelLoaded bool   `json:"text_model_loaded"`
}

// Config holds the collaborators of a Service. Text, Face and Store may be
// nil; a nil classifier is treated as unavailable and a nil store as
// disconnected.
type Config struct {
	Text        TextClassifier
	Face        FaceClassifier
	Recommender Recommender
	Store       catalog.Pinger
	Logger      *logger.Logger
	Limit       int

	// MaxImagePixels caps width*height of decoded images. Zero uses
	// DefaultMaxImagePixels.
	MaxImagePixels int
}

// Service orchestrates classification, normalization, genre resolution and
// ranking. It holds no per-request state and is safe for concurrent use.
type Service struct {
	text        TextClassifier
	face        FaceClassifier
	recommender Recommender
	store       catalog.Pinger
	log         *logger.Logger
	limit       int
	maxPixels   int
}

// New creates a Service.
func New(cfg Config) *Service {
	limit := cfg.Limit
	if limit <= 0 {
		limit = recommend.DefaultLimit
	}
	s := &Service{
		text:        cfg.Text,
		face:        cfg.Face,
		recommender: cfg.Recommender,
		store:       cfg.Store,
		log:         logger.OrNop(cfg.Logger),
		limit:       limit,
		maxPixels:   cfg.MaxImagePixels,
	}
	if s.maxPixels <= 0 {
		s.maxPixels = DefaultMaxImagePixels
	}
	return s
}

// Orchestrate resolves a raw classifier label from modality into a
// Suggestion. An empty label resolves to the Neutral mood.
func (s *Service) Orchestrate(ctx context.Context, modality mood.Modality, rawLabel string) Suggestion {
	return s.suggest(ctx, mood.Normalize(modality, rawLabel))
}

// PredictFromText classifies text and returns its Suggestion. Blank text is
// rejected with ErrInvalidInput before any classifier or store call.
func (s *Service) PredictFromText(ctx context.Context, text string) (Suggestion, error) {
	if strings.TrimSpace(text) == "" {
		return Suggestion{}, fmt.Errorf("%w: text is empty", ErrInvalidInput)
	}

	label, err := s.classifyText(ctx, text)
	return s.suggest(ctx, s.moodFor(mood.Text, label, err)), nil
}

// PredictFromImageBytes decodes an encoded image, classifies the face in it
// and returns its Suggestion. Bytes that are not a supported image are
// rejected with ErrInvalidInput.
func (s *Service) PredictFromImageBytes(ctx context.Context, data []byte) (Suggestion, error) {
	img, err := decodeImage(data, s.maxPixels)
	if err != nil {
		return Suggestion{}, err
	}

	label, err := s.classifyFace(ctx, img)
	return s.suggest(ctx, s.moodFor(mood.Image, label, err)), nil
}

// PredictFromBase64Image accepts a raw base64 image or a data URI
// ("data:image/jpeg;base64,...") and behaves like PredictFromImageBytes.
func (s *Service) PredictFromBase64Image(ctx context.Context, payload string) (Suggestion, error) {
	data, err := decodeBase64Payload(payload)
	if err != nil {
		return Suggestion{}, err
	}
	return s.PredictFromImageBytes(ctx, data)
}

// Health pings the store and probes the text model.
func (s *Service) Health(ctx context.Context) Health {
	h := Health{Status: "ok"}
	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			s.log.Warn("store ping failed", "error", err)
		} else {
			h.StoreConnected = true
		}
	}
	if s.text != nil {
		h.TextModelLoaded = s.text.Ready(ctx)
	}
	return h
}

func (s *Service) classifyText(ctx context.Context, text string) (string, error) {
	if s.text == nil {
		return "", fmt.Errorf("%w: text model not loaded", classifier.ErrUnavailable)
	}
	return s.text.ClassifyText(ctx, text)
}

func (s *Service) classifyFace(ctx context.Context, img imageFrame) (string, error) {
	if s.face == nil {
		return "", fmt.Errorf("%w: face detector not loaded", classifier.ErrUnavailable)
	}
	frame, err := img.jpeg()
	if err != nil {
		return "", fmt.Errorf("%w: encoding frame: %v", classifier.ErrUnavailable, err)
	}
	return s.face.ClassifyFace(ctx, frame)
}

// moodFor is the single place a classifier failure turns into the default
// mood.
func (s *Service) moodFor(modality mood.Modality, label string, err error) mood.Mood {
	if err != nil {
		s.log.Warn("classifier failed, using default mood",
			"modality", modality,
			"default", mood.Default,
			"error", err,
		)
		return mood.Default
	}
	return mood.Normalize(modality, label)
}

func (s *Service) suggest(ctx context.Context, m mood.Mood) Suggestion {
	g := genre.Resolve(m)

	var songs []catalog.SongSummary
	if s.recommender != nil {
		songs = s.recommender.Recommend(ctx, m.String(), g.String(), s.limit)
	}
	if songs == nil {
		songs = []catalog.SongSummary{}
	}

	s.log.Debug("resolved suggestion", "mood", m, "genre", g, "songs", len(songs))
	return Suggestion{
		Emotion:     m,
		Genre:       g,
		Suggestions: songs,
	}
}
