// Package mongostore provides a MongoDB-backed song catalog using the
// collections and field names of the original music database: songs, moods
// and genres, with songs referencing moods and genres by ObjectID.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/justestif/moodtunes/internal/catalog"
)

// DefaultDatabase is the database used when none is configured.
const DefaultDatabase = "musicapppr"

// Collection names.
const (
	songsCollection  = "songs"
	moodsCollection  = "moods"
	genresCollection = "genres"
)

// Store is a catalog.Store backed by MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ catalog.Store = (*Store)(nil)

// Connect opens a client for uri, verifies it with a ping and returns a store
// over database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	if database == "" {
		database = DefaultDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	return &Store{client: client, db: client.Database(database)}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnecting from mongo: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return storeErr("pinging mongo", err)
	}
	return nil
}

func (s *Store) FindMoodByName(ctx context.Context, name string) (*catalog.MoodDoc, error) {
	var m moodDoc
	err := s.db.Collection(moodsCollection).FindOne(ctx, nameFilter(name)).Decode(&m)
	if err != nil {
		return nil, storeErr("finding mood", err)
	}
	doc := m.catalog()
	return &doc, nil
}

func (s *Store) FindGenreByName(ctx context.Context, name string) (*catalog.GenreDoc, error) {
	var g genreDoc
	err := s.db.Collection(genresCollection).FindOne(ctx, nameFilter(name)).Decode(&g)
	if err != nil {
		return nil, storeErr("finding genre", err)
	}
	doc := g.catalog()
	return &doc, nil
}

// RankSongs runs the ranking aggregation. Ids that are not ObjectIDs cannot
// match any song and yield an empty result.
func (s *Store) RankSongs(ctx context.Context, spec catalog.MatchSpec, limit int) ([]catalog.SongSummary, error) {
	out := []catalog.SongSummary{}
	if limit == 0 {
		return out, nil
	}

	f, ok := newRankFilter(spec)
	if !ok {
		return out, nil
	}

	cur, err := s.db.Collection(songsCollection).Aggregate(ctx, rankPipeline(f, limit))
	if err != nil {
		return nil, storeErr("ranking songs", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var r rankedSong
		if err := cur.Decode(&r); err != nil {
			return nil, storeErr("decoding ranked song", err)
		}
		out = append(out, r.summary())
	}
	if err := cur.Err(); err != nil {
		return nil, storeErr("ranking songs", err)
	}
	return out, nil
}

func (s *Store) GenreNames(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.D{{Key: "name", Value: 1}})

	var genres []genreDoc
	if err := s.findAll(ctx, genresCollection, opts, &genres); err != nil {
		return nil, storeErr("listing genre names", err)
	}
	names := make([]string, len(genres))
	for i, g := range genres {
		names[i] = g.Name
	}
	return names, nil
}

func (s *Store) ListMoods(ctx context.Context) ([]catalog.MoodDoc, error) {
	var moods []moodDoc
	if err := s.findAll(ctx, moodsCollection, byName(), &moods); err != nil {
		return nil, storeErr("listing moods", err)
	}
	out := make([]catalog.MoodDoc, len(moods))
	for i, m := range moods {
		out[i] = m.catalog()
	}
	return out, nil
}

func (s *Store) ListGenres(ctx context.Context) ([]catalog.GenreDoc, error) {
	var genres []genreDoc
	if err := s.findAll(ctx, genresCollection, byName(), &genres); err != nil {
		return nil, storeErr("listing genres", err)
	}
	out := make([]catalog.GenreDoc, len(genres))
	for i, g := range genres {
		out[i] = g.catalog()
	}
	return out, nil
}

// SeedDefaults inserts the default moods and genres that are not present.
func (s *Store) SeedDefaults(ctx context.Context) error {
	moods := s.db.Collection(moodsCollection)
	for _, m := range catalog.DefaultMoods {
		if err := insertIfAbsent(ctx, moods, m.Name, newMoodDoc(m)); err != nil {
			return storeErr("seeding moods", err)
		}
	}

	genres := s.db.Collection(genresCollection)
	for _, g := range catalog.DefaultGenres {
		if err := insertIfAbsent(ctx, genres, g.Name, newGenreDoc(g)); err != nil {
			return storeErr("seeding genres", err)
		}
	}
	return nil
}

// UpsertSongs updates songs keyed by externalId and inserts the rest.
func (s *Store) UpsertSongs(ctx context.Context, songs []catalog.Song) error {
	if len(songs) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(songs))
	for _, song := range songs {
		doc, err := newSongDoc(song)
		if err != nil {
			return fmt.Errorf("converting song %q: %w", song.Name, err)
		}
		models = append(models, writeModel(doc))
	}

	if _, err := s.db.Collection(songsCollection).BulkWrite(ctx, models); err != nil {
		return storeErr("upserting songs", err)
	}
	return nil
}

func (s *Store) findAll(ctx context.Context, collection string, opts *options.FindOptions, out any) error {
	cur, err := s.db.Collection(collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func insertIfAbsent(ctx context.Context, coll *mongo.Collection, name string, doc any) error {
	err := coll.FindOne(ctx, nameFilter(name)).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	_, err = coll.InsertOne(ctx, doc)
	return err
}

// writeModel upserts by externalId when the song has one.
func writeModel(doc songDoc) mongo.WriteModel {
	if doc.ExternalID == "" {
		return mongo.NewInsertOneModel().SetDocument(doc)
	}
	return mongo.NewUpdateOneModel().
		SetFilter(bson.D{{Key: "externalId", Value: doc.ExternalID}}).
		SetUpdate(songUpdate(doc)).
		SetUpsert(true)
}

// songUpdate sets either the artist reference or the artist name and
// unsets the other, so an upsert never leaves both.
func songUpdate(doc songDoc) bson.D {
	set := bson.D{{Key: "name", Value: doc.Name}}
	unset := bson.D{}
	if doc.Artist != nil {
		set = append(set, bson.E{Key: "artist", Value: *doc.Artist})
		unset = append(unset, bson.E{Key: "artistName", Value: ""})
	} else {
		set = append(set, bson.E{Key: "artistName", Value: doc.ArtistName})
		unset = append(unset, bson.E{Key: "artist", Value: ""})
	}
	set = append(set,
		bson.E{Key: "image", Value: doc.Image},
		bson.E{Key: "file", Value: doc.File},
		bson.E{Key: "duration", Value: doc.Duration},
		bson.E{Key: "playCount", Value: doc.PlayCount},
		bson.E{Key: "moods", Value: doc.Moods},
		bson.E{Key: "genres", Value: doc.Genres},
	)
	return bson.D{{Key: "$set", Value: set}, {Key: "$unset", Value: unset}}
}

func byName() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
}

func storeErr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return catalog.ErrNotFound
	}
	return fmt.Errorf("%w: %s: %w", catalog.ErrUnavailable, op, err)
}

func roundDuration(d float64) int {
	return int(math.Round(d))
}
