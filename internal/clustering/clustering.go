// Package clustering tags tracks with canonical moods by grouping them on
// their audio features.
package clustering

// Track is a track with the audio features used for mood tagging.
type Track struct {
	ID string
	// Audio features (nil if not fetched or unavailable)
	Energy       *float32
	Valence      *float32
	Danceability *float32
	Acousticness *float32
}

// Config holds clustering parameters.
type Config struct {
	NumClusters    int // Number of clusters to create
	MinClusterSize int // Smaller clusters have their tracks tagged individually
}

// DefaultConfig returns the recommended default configuration.
func DefaultConfig() Config {
	return Config{
		NumClusters:    4,
		MinClusterSize: 3,
	}
}
