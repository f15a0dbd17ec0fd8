package sync

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/catalog/catalogtest"
	"github.com/justestif/moodtunes/internal/clustering"
	"github.com/justestif/moodtunes/internal/mood"
	"github.com/justestif/moodtunes/internal/spotify"
	"github.com/justestif/moodtunes/internal/tags"
)

// mockSource implements Source for testing.
type mockSource struct {
	tracks      []spotify.Track
	features    map[string]spotify.AudioFeatures
	tracksErr   error
	featuresErr error
}

func (m *mockSource) FetchPlaylistTracks(ctx context.Context, playlistID string) ([]spotify.Track, error) {
	return m.tracks, m.tracksErr
}

func (m *mockSource) FetchAudioFeatures(ctx context.Context, trackIDs []string) (map[string]spotify.AudioFeatures, error) {
	return m.features, m.featuresErr
}

// mockTagger implements GenreTagger for testing.
type mockTagger struct {
	genres map[string][]string
	err    error

	gotTracks []tags.Track
	gotNames  []string
}

func (m *mockTagger) Genres(ctx context.Context, tracks []tags.Track, genres []string) (map[string][]string, error) {
	m.gotTracks = tracks
	m.gotNames = genres
	return m.genres, m.err
}

func partySource() *mockSource {
	return &mockSource{
		tracks: []spotify.Track{
			{ID: "t1", Name: "Dancing Queen", Artist: "ABBA", Image: "img1", PreviewURL: "prev1", DurationSec: 231, Popularity: 82},
			{ID: "t2", Name: "Levitating", Artist: "Dua Lipa", DurationSec: 203, Popularity: 88},
			{ID: "t3", Name: "Podcast Intro", Artist: "Host", Popularity: 5},
		},
		features: map[string]spotify.AudioFeatures{
			"t1": {Energy: 0.87, Valence: 0.75, Danceability: 0.80, Acousticness: 0.10},
			"t2": {Energy: 0.82, Valence: 0.91, Danceability: 0.70, Acousticness: 0.05},
		},
	}
}

func seededStore(t *testing.T) *catalogtest.Store {
	t.Helper()
	store := catalogtest.New()
	if err := store.SeedDefaults(context.Background()); err != nil {
		t.Fatalf("SeedDefaults() error = %v", err)
	}
	return store
}

func TestImportPlaylist(t *testing.T) {
	store := seededStore(t)
	svc := New(store, WithClusterConfig(clustering.Config{NumClusters: 1, MinClusterSize: 1}))

	result, err := svc.ImportPlaylist(context.Background(), partySource(), "p1")
	if err != nil {
		t.Fatalf("ImportPlaylist() error = %v", err)
	}

	if result.Fetched != 3 || result.Imported != 3 {
		t.Errorf("Fetched=%d Imported=%d, want 3/3", result.Fetched, result.Imported)
	}
	if result.Untagged != 1 {
		t.Errorf("Untagged = %d, want 1", result.Untagged)
	}
	if result.ByMood[mood.Happy] != 2 {
		t.Errorf("ByMood = %v, want 2 Happy", result.ByMood)
	}

	happy, _ := store.FindMoodByName(context.Background(), "Happy")
	dance, _ := store.FindGenreByName(context.Background(), "Dance")

	songs := map[string]catalog.Song{}
	for _, s := range store.Songs() {
		songs[s.ExternalID] = s
	}
	if len(songs) != 3 {
		t.Fatalf("expected 3 stored songs, got %d", len(songs))
	}

	t1 := songs["t1"]
	if t1.Name != "Dancing Queen" || t1.ArtistID != "ABBA" || t1.Image != "img1" || t1.File != "prev1" {
		t.Errorf("unexpected song metadata %+v", t1)
	}
	if t1.Duration != 231 || t1.PlayCount != 82 {
		t.Errorf("Duration=%d PlayCount=%d", t1.Duration, t1.PlayCount)
	}
	spec := catalog.MatchSpec{MoodID: happy.ID, GenreID: dance.ID}
	for _, id := range []string{"t1", "t2"} {
		if !spec.Matches(songs[id]) {
			t.Errorf("song %s should be tagged Happy/Dance, got moods=%v genres=%v", id, songs[id].MoodIDs, songs[id].GenreIDs)
		}
	}
	if len(songs["t3"].MoodIDs) != 0 || len(songs["t3"].GenreIDs) != 0 {
		t.Errorf("song without features should be untagged, got %+v", songs["t3"])
	}
}

func TestImportPlaylist_Reimport(t *testing.T) {
	store := seededStore(t)
	svc := New(store, WithClusterConfig(clustering.Config{NumClusters: 1, MinClusterSize: 1}))
	src := partySource()

	if _, err := svc.ImportPlaylist(context.Background(), src, "p1"); err != nil {
		t.Fatalf("first import error = %v", err)
	}
	src.tracks[0].Popularity = 99
	if _, err := svc.ImportPlaylist(context.Background(), src, "p1"); err != nil {
		t.Fatalf("second import error = %v", err)
	}

	songs := store.Songs()
	if len(songs) != 3 {
		t.Fatalf("re-import should update in place, got %d songs", len(songs))
	}
	for _, s := range songs {
		if s.ExternalID == "t1" && s.PlayCount != 99 {
			t.Errorf("PlayCount = %d, want 99", s.PlayCount)
		}
	}
}

func TestImportPlaylist_UnseededCatalog(t *testing.T) {
	store := catalogtest.New()
	svc := New(store, WithClusterConfig(clustering.Config{NumClusters: 1, MinClusterSize: 1}))

	result, err := svc.ImportPlaylist(context.Background(), partySource(), "p1")
	if err != nil {
		t.Fatalf("ImportPlaylist() error = %v", err)
	}
	if result.Imported != 3 {
		t.Errorf("Imported = %d, want 3", result.Imported)
	}
	for _, s := range store.Songs() {
		if len(s.MoodIDs) != 0 || len(s.GenreIDs) != 0 {
			t.Errorf("song %s tagged without catalog labels", s.ExternalID)
		}
	}
}

func TestImportPlaylist_Empty(t *testing.T) {
	store := seededStore(t)
	result, err := New(store).ImportPlaylist(context.Background(), &mockSource{}, "empty")
	if err != nil {
		t.Fatalf("ImportPlaylist() error = %v", err)
	}
	if result.Fetched != 0 || result.Imported != 0 {
		t.Errorf("unexpected result %+v", result)
	}
	if len(store.Songs()) != 0 {
		t.Error("no songs should be stored")
	}
}

func TestImportPlaylist_Errors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		source   *mockSource
		storeErr error
	}{
		{name: "fetch tracks", source: &mockSource{tracksErr: boom}},
		{name: "fetch features", source: &mockSource{tracks: partySource().tracks, featuresErr: boom}},
		{name: "store unavailable", source: partySource(), storeErr: boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore(t)
			store.Err = tt.storeErr

			_, err := New(store).ImportPlaylist(context.Background(), tt.source, "p1")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.storeErr != nil && !errors.Is(err, catalog.ErrUnavailable) {
				t.Errorf("expected ErrUnavailable, got %v", err)
			}
			if tt.storeErr == nil && !errors.Is(err, boom) {
				t.Errorf("expected wrapped source error, got %v", err)
			}
		})
	}
}

func TestToClusteringTracks(t *testing.T) {
	tracks := []spotify.Track{{ID: "a"}, {ID: "b"}}
	features := map[string]spotify.AudioFeatures{
		"a": {Energy: 0.1, Valence: 0.2, Danceability: 0.3, Acousticness: 0.4},
	}

	got := toClusteringTracks(tracks, features)
	if got[0].Energy == nil || *got[0].Energy != 0.1 || *got[0].Acousticness != 0.4 {
		t.Errorf("features not copied for a: %+v", got[0])
	}
	if got[1].Energy != nil {
		t.Errorf("b should have no features")
	}
}

func TestImportPlaylist_GenreTagger(t *testing.T) {
	store := seededStore(t)
	tagger := &mockTagger{genres: map[string][]string{
		"t1": {"Rock", "Shoegaze", "Dance"},
		"t3": {"pop"},
	}}
	src := partySource()
	src.tracks[1].Artist = "Dua Lipa, DaBaby"

	svc := New(store,
		WithClusterConfig(clustering.Config{NumClusters: 1, MinClusterSize: 1}),
		WithGenreTagger(tagger),
	)
	result, err := svc.ImportPlaylist(context.Background(), src, "p1")
	if err != nil {
		t.Fatalf("ImportPlaylist() error = %v", err)
	}
	if result.GenreTagged != 2 {
		t.Errorf("GenreTagged = %d, want 2", result.GenreTagged)
	}

	if len(tagger.gotTracks) != 3 || tagger.gotTracks[1].Artist != "Dua Lipa" {
		t.Errorf("tagger tracks = %+v", tagger.gotTracks)
	}
	if len(tagger.gotNames) != len(catalog.DefaultGenres) {
		t.Errorf("tagger got %d genre names, want %d", len(tagger.gotNames), len(catalog.DefaultGenres))
	}

	ctx := context.Background()
	dance, _ := store.FindGenreByName(ctx, "Dance")
	rock, _ := store.FindGenreByName(ctx, "Rock")
	pop, _ := store.FindGenreByName(ctx, "Pop")

	songs := map[string]catalog.Song{}
	for _, s := range store.Songs() {
		songs[s.ExternalID] = s
	}
	if got, want := songs["t1"].GenreIDs, []string{dance.ID, rock.ID}; !reflect.DeepEqual(got, want) {
		t.Errorf("t1 genres = %v, want %v", got, want)
	}
	if got, want := songs["t2"].GenreIDs, []string{dance.ID}; !reflect.DeepEqual(got, want) {
		t.Errorf("t2 genres = %v, want %v", got, want)
	}
	if got, want := songs["t3"].GenreIDs, []string{pop.ID}; !reflect.DeepEqual(got, want) {
		t.Errorf("t3 genres = %v, want %v", got, want)
	}
	if len(songs["t3"].MoodIDs) != 0 {
		t.Errorf("t3 should have no mood, got %v", songs["t3"].MoodIDs)
	}
}

func TestImportPlaylist_GenreTaggerError(t *testing.T) {
	boom := errors.New("lastfm down")
	store := seededStore(t)
	svc := New(store, WithGenreTagger(&mockTagger{err: boom}))

	if _, err := svc.ImportPlaylist(context.Background(), partySource(), "p1"); !errors.Is(err, boom) {
		t.Errorf("expected tagger error, got %v", err)
	}
	if len(store.Songs()) != 0 {
		t.Error("no songs should be stored when tagging fails")
	}
}

func TestPrimaryArtist(t *testing.T) {
	tests := map[string]string{
		"ABBA":                 "ABBA",
		"Dua Lipa, DaBaby":     "Dua Lipa",
		" Artist A , Artist B": "Artist A",
		"":                     "",
	}
	for in, want := range tests {
		if got := primaryArtist(in); got != want {
			t.Errorf("primaryArtist(%q) = %q, want %q", in, got, want)
		}
	}
}
