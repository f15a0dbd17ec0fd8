package mongostore

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/justestif/moodtunes/internal/catalog"
)

type moodDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Color       string             `bson:"color,omitempty"`
	Description string             `bson:"description,omitempty"`
}

func newMoodDoc(m catalog.MoodDoc) moodDoc {
	return moodDoc{Name: strings.TrimSpace(m.Name), Color: m.Color, Description: m.Description}
}

func (m moodDoc) catalog() catalog.MoodDoc {
	return catalog.MoodDoc{ID: m.ID.Hex(), Name: m.Name, Color: m.Color, Description: m.Description}
}

type genreDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
}

func newGenreDoc(g catalog.GenreDoc) genreDoc {
	return genreDoc{Name: strings.TrimSpace(g.Name), Description: g.Description}
}

func (g genreDoc) catalog() catalog.GenreDoc {
	return catalog.GenreDoc{ID: g.ID.Hex(), Name: g.Name, Description: g.Description}
}

type songDoc struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty"`
	ExternalID string               `bson:"externalId,omitempty"`
	Name       string               `bson:"name"`
	Artist     *primitive.ObjectID  `bson:"artist,omitempty"`
	ArtistName string               `bson:"artistName,omitempty"`
	Image      string               `bson:"image,omitempty"`
	File       string               `bson:"file,omitempty"`
	Duration   int                  `bson:"duration"`
	PlayCount  int                  `bson:"playCount"`
	Moods      []primitive.ObjectID `bson:"moods"`
	Genres     []primitive.ObjectID `bson:"genres"`
}

func newSongDoc(s catalog.Song) (songDoc, error) {
	doc := songDoc{
		ExternalID: s.ExternalID,
		Name:       s.Name,
		Image:      s.Image,
		File:       s.File,
		Duration:   s.Duration,
		PlayCount:  s.PlayCount,
	}
	if s.ID != "" {
		id, err := primitive.ObjectIDFromHex(s.ID)
		if err != nil {
			return songDoc{}, fmt.Errorf("parsing song id: %w", err)
		}
		doc.ID = id
	}
	doc.Artist, doc.ArtistName = artistRef(s.ArtistID)

	var err error
	if doc.Moods, err = objectIDs(s.MoodIDs); err != nil {
		return songDoc{}, fmt.Errorf("parsing mood ids: %w", err)
	}
	if doc.Genres, err = objectIDs(s.GenreIDs); err != nil {
		return songDoc{}, fmt.Errorf("parsing genre ids: %w", err)
	}
	return doc, nil
}

// artistRef keeps the artist field an ObjectId reference. Anything else,
// such as a Spotify artist name, goes to artistName.
func artistRef(artist string) (*primitive.ObjectID, string) {
	if id, err := primitive.ObjectIDFromHex(artist); err == nil {
		return &id, ""
	}
	return nil, artist
}

// rankedSong is the projection produced by rankPipeline. Duration is decoded
// as a double since older documents store it as one.
type rankedSong struct {
	Name     string  `bson:"name"`
	Artist   string  `bson:"artist"`
	Image    string  `bson:"image"`
	File     string  `bson:"file"`
	Duration float64 `bson:"duration"`
}

func (r rankedSong) summary() catalog.SongSummary {
	return catalog.SongSummary{
		Name:     r.Name,
		Artist:   r.Artist,
		Image:    r.Image,
		File:     r.File,
		Duration: roundDuration(r.Duration),
	}
}

// rankFilter holds the resolved membership clauses. A nil id drops that
// clause.
type rankFilter struct {
	mood  *primitive.ObjectID
	genre *primitive.ObjectID
}

func newRankFilter(spec catalog.MatchSpec) (rankFilter, bool) {
	var f rankFilter
	if spec.MoodID != "" {
		id, err := primitive.ObjectIDFromHex(spec.MoodID)
		if err != nil {
			return rankFilter{}, false
		}
		f.mood = &id
	}
	if spec.GenreID != "" {
		id, err := primitive.ObjectIDFromHex(spec.GenreID)
		if err != nil {
			return rankFilter{}, false
		}
		f.genre = &id
	}
	return f, true
}

// rankPipeline matches songs tagged with the filter's mood and genre, sorts
// them by play count (ties by insertion order), applies the limit and
// projects the summary fields. The artist is artistName when present and the
// stringified artist reference otherwise. A
// limit <= 0 omits the $limit stage.
func rankPipeline(f rankFilter, limit int) mongo.Pipeline {
	match := bson.D{}
	if f.mood != nil {
		match = append(match, bson.E{Key: "moods", Value: *f.mood})
	}
	if f.genre != nil {
		match = append(match, bson.E{Key: "genres", Value: *f.genre})
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "playCount", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$project", Value: bson.D{
		{Key: "_id", Value: 0},
		{Key: "name", Value: 1},
		{Key: "artist", Value: artistProjection},
		{Key: "image", Value: 1},
		{Key: "file", Value: 1},
		{Key: "duration", Value: 1},
	}}})
	return pipeline
}

var artistProjection = bson.D{{Key: "$ifNull", Value: bson.A{
	"$artistName",
	bson.D{{Key: "$toString", Value: "$artist"}},
}}}

// nameFilter matches documents whose name equals name after trimming and
// lower-casing both sides.
func nameFilter(name string) bson.D {
	return bson.D{{Key: "$expr", Value: bson.D{{Key: "$eq", Value: bson.A{
		bson.D{{Key: "$toLower", Value: bson.D{{Key: "$trim", Value: bson.D{{Key: "input", Value: "$name"}}}}}},
		catalog.NormalizeName(name),
	}}}}}
}

func objectIDs(hexes []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
