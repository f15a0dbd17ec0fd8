package db

import (
	"time"

	"github.com/google/uuid"
)

// Mood is a row of the moods table.
type Mood struct {
	ID          uuid.UUID
	Name        string
	Color       string
	Description string
	CreatedAt   time.Time
}

// Genre is a row of the genres table.
type Genre struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
}

// Song is a row of the songs table.
type Song struct {
	ID         uuid.UUID
	ExternalID *string // nullable
	Name       string
	ArtistID   string
	Image      *string // nullable
	File       *string // nullable
	Duration   int
	PlayCount  int
	MoodIDs    []uuid.UUID
	GenreIDs   []uuid.UUID
}

// RankedSong is the projection returned by ranking queries.
type RankedSong struct {
	Name     string
	ArtistID string
	Image    string
	File     string
	Duration int
}
