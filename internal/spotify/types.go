package spotify

// Track contains the playlist track metadata stored in the catalog.
type Track struct {
	ID          string
	Name        string
	Artist      string // Comma-separated artist names
	Image       string // Largest album cover URL
	PreviewURL  string
	DurationSec int
	Popularity  int // 0-100
}

// AudioFeatures holds the audio features used for mood tagging.
type AudioFeatures struct {
	Energy       float32
	Valence      float32
	Danceability float32
	Acousticness float32
}
