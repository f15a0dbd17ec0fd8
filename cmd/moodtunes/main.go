// Command moodtunes serves mood-based song suggestions and maintains the
// song catalog.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/justestif/moodtunes/internal/auth"
	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/classifier"
	"github.com/justestif/moodtunes/internal/clustering"
	"github.com/justestif/moodtunes/internal/config"
	"github.com/justestif/moodtunes/internal/db"
	"github.com/justestif/moodtunes/internal/genre"
	"github.com/justestif/moodtunes/internal/lastfm"
	"github.com/justestif/moodtunes/internal/logger"
	"github.com/justestif/moodtunes/internal/mongostore"
	"github.com/justestif/moodtunes/internal/recommend"
	"github.com/justestif/moodtunes/internal/spotify"
	"github.com/justestif/moodtunes/internal/suggest"
	"github.com/justestif/moodtunes/internal/sync"
	"github.com/justestif/moodtunes/internal/tags"
	"github.com/justestif/moodtunes/internal/web"
)

const usage = `usage: moodtunes <command> [flags]

commands:
  serve                  run the HTTP API
  seed                   insert the default moods and genres
  import -playlist <id>  import a Spotify playlist into the catalog`

var errUsage = errors.New(usage)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Warn("closing store", "error", err)
		}
	}()

	switch args[0] {
	case "serve":
		return serve(ctx, cfg, store, log)
	case "seed":
		if err := store.SeedDefaults(ctx); err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
		log.Info("seeded default moods and genres",
			"moods", len(catalog.DefaultMoods),
			"genres", len(catalog.DefaultGenres),
		)
		return nil
	case "import":
		return importPlaylist(ctx, cfg, store, log, args[1:])
	default:
		return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (catalog.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverMongo:
		store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connecting to mongo: %w", err)
		}
		return store, nil
	default:
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			_ = database.Close(ctx)
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		return database, nil
	}
}

func serve(ctx context.Context, cfg *config.Config, store catalog.Store, log *logger.Logger) error {
	rec := recommend.New(store,
		recommend.WithDefaultLimit(cfg.RecommendLimit),
		recommend.WithLogger(log),
	)

	svc := suggest.New(suggest.Config{
		Text:        classifier.NewTextClient(cfg.TextClassifierURL, cfg.ClassifierTimeout),
		Face:        classifier.NewFaceClient(cfg.FaceClassifierURL, cfg.ClassifierTimeout),
		Recommender: rec,
		Store:       store,
		Logger:      log,
		Limit:       cfg.RecommendLimit,

		MaxImagePixels: cfg.MaxImagePixels,
	})

	handlers := web.NewHandlers(svc, rec, genre.NewFallbackBuilder(store, log), store, log)
	server := web.NewServer(web.ServerConfig{
		Addr:           cfg.Addr,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         log,
	}, handlers)

	return server.Run(ctx)
}

func importPlaylist(ctx context.Context, cfg *config.Config, store catalog.Store, log *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	playlistID := fs.String("playlist", "", "Spotify playlist id")
	clusters := fs.Int("clusters", clustering.DefaultConfig().NumClusters, "number of k-means clusters")
	minCluster := fs.Int("min-cluster", clustering.DefaultConfig().MinClusterSize, "minimum cluster size tagged by its centroid")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *playlistID == "" {
		return fmt.Errorf("missing -playlist\n%w", errUsage)
	}

	authenticator, err := auth.New(cfg.SpotifyID, cfg.SpotifySecret)
	if err != nil {
		return err
	}
	api, err := authenticator.Authenticate(ctx)
	if err != nil {
		return fmt.Errorf("authenticating with Spotify: %w", err)
	}

	opts := []sync.Option{
		sync.WithClusterConfig(clustering.Config{NumClusters: *clusters, MinClusterSize: *minCluster}),
		sync.WithLogger(log),
	}
	if cfg.LastFMAPIKey != "" {
		client, err := lastfm.New(cfg.LastFMAPIKey)
		if err != nil {
			return err
		}
		opts = append(opts, sync.WithGenreTagger(tags.New(client, tags.WithLogger(log))))
	} else {
		log.Info("LASTFM_API_KEY not set, skipping Last.fm genre tagging")
	}
	importer := sync.New(store, opts...)

	result, err := importer.ImportPlaylist(ctx, spotify.New(api, log), *playlistID)
	if err != nil {
		return fmt.Errorf("importing playlist %s: %w", *playlistID, err)
	}

	fmt.Printf("Imported %d of %d tracks (%d untagged, %d clusters, %d genre-tagged)\n",
		result.Imported, result.Fetched, result.Untagged, result.Clusters, result.GenreTagged)
	for m, n := range result.ByMood {
		fmt.Printf("  %-10s %d\n", m, n)
	}
	return nil
}
