package clustering

import (
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/justestif/moodtunes/internal/mood"
)

// Tagged is a track and the mood assigned to it.
type Tagged struct {
	Track     Track
	Mood      mood.Mood
	Clustered bool // false when tagged from the track's own features
}

// Result is the outcome of TagMoods.
type Result struct {
	Tagged   []Tagged // in input order
	Untagged []Track  // tracks missing audio features
	Clusters int      // clusters large enough to tag as a group
}

// trackObservation wraps a Track to implement clusters.Observation interface.
type trackObservation struct {
	index  int
	coords clusters.Coordinates
}

func (o trackObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o trackObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// featureNames defines the audio features used for clustering.
var featureNames = []string{"energy", "valence", "danceability", "acousticness"}

// TagMoods groups tracks by audio feature similarity using k-means and tags
// every track in a cluster with the mood of the cluster's centroid. Tracks in
// clusters smaller than MinClusterSize, and all tracks when there are fewer
// than NumClusters of them, are tagged from their own features. Tracks
// missing audio features are left untagged.
func TagMoods(tracks []Track, cfg Config) Result {
	if cfg.NumClusters <= 0 {
		cfg.NumClusters = DefaultConfig().NumClusters
	}

	var (
		res   Result
		obs   clusters.Observations
		moods = make(map[int]mood.Mood)
		group = make(map[int]bool)
	)

	for i := range tracks {
		if !hasAudioFeatures(&tracks[i]) {
			res.Untagged = append(res.Untagged, tracks[i])
			continue
		}
		coords := extractFeatures(&tracks[i])
		obs = append(obs, trackObservation{index: i, coords: coords})
		moods[i] = moodForCentroid(centroidOf(coords))
	}

	if len(obs) >= cfg.NumClusters {
		partitioned, err := kmeans.New().Partition(obs, cfg.NumClusters)
		if err == nil {
			for _, cluster := range partitioned {
				if len(cluster.Observations) == 0 || len(cluster.Observations) < cfg.MinClusterSize {
					continue
				}
				res.Clusters++
				m := moodForCentroid(centroidOf(meanOf(cluster.Observations)))
				for _, o := range cluster.Observations {
					if to, ok := o.(trackObservation); ok {
						moods[to.index] = m
						group[to.index] = true
					}
				}
			}
		}
	}

	indexes := make([]int, 0, len(moods))
	for i := range moods {
		indexes = append(indexes, i)
	}
	slices.Sort(indexes)

	for _, i := range indexes {
		res.Tagged = append(res.Tagged, Tagged{
			Track:     tracks[i],
			Mood:      moods[i],
			Clustered: group[i],
		})
	}
	return res
}

// hasAudioFeatures checks if a track has the required audio features for clustering.
func hasAudioFeatures(t *Track) bool {
	return t.Energy != nil &&
		t.Valence != nil &&
		t.Danceability != nil &&
		t.Acousticness != nil
}

// extractFeatures extracts the audio features used for clustering as a coordinate vector.
func extractFeatures(t *Track) clusters.Coordinates {
	return clusters.Coordinates{
		float64(*t.Energy),
		float64(*t.Valence),
		float64(*t.Danceability),
		float64(*t.Acousticness),
	}
}

// meanOf returns the mean of obs. kmeans leaves a cluster's Center at its
// random seed when no point moves, so the centroid is computed here.
func meanOf(obs clusters.Observations) clusters.Coordinates {
	if len(obs) == 0 {
		return nil
	}
	mean := make(clusters.Coordinates, len(obs[0].Coordinates()))
	for _, o := range obs {
		for i, v := range o.Coordinates() {
			if i < len(mean) {
				mean[i] += v
			}
		}
	}
	for i := range mean {
		mean[i] /= float64(len(obs))
	}
	return mean
}

func centroidOf(coords clusters.Coordinates) map[string]float32 {
	centroid := make(map[string]float32, len(featureNames))
	for i, name := range featureNames {
		if i < len(coords) {
			centroid[name] = float32(coords[i])
		}
	}
	return centroid
}

// moodForCentroid maps audio feature values to a canonical mood using a 2x2
// energy/valence quadrant system, split further by danceability or
// acousticness:
//
//   - High Energy + High Valence = Happy, or Powerful when not danceable
//   - High Energy + Low Valence  = Anger
//   - Low Energy  + High Valence = Calm, or Love when acoustic
//   - Low Energy  + Low Valence  = Anxiety, or Sad when acoustic
func moodForCentroid(centroid map[string]float32) mood.Mood {
	highEnergy := centroid["energy"] > 0.6
	highValence := centroid["valence"] > 0.5
	danceable := centroid["danceability"] > 0.6
	acoustic := centroid["acousticness"] > 0.6

	switch {
	case highEnergy && highValence:
		if danceable {
			return mood.Happy
		}
		return mood.Powerful
	case highEnergy:
		return mood.Anger
	case highValence:
		if acoustic {
			return mood.Love
		}
		return mood.Calm
	default:
		if acoustic {
			return mood.Sad
		}
		return mood.Anxiety
	}
}
