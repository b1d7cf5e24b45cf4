package importer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"vgmimport/internal/archive"
	"vgmimport/internal/catalog"
	"vgmimport/internal/config"
	"vgmimport/internal/fileutil"
	"vgmimport/internal/logging"
	"vgmimport/internal/manifest"
	"vgmimport/internal/trackname"
)

// SystemStore finds and saves systems.
type SystemStore interface {
	FindByName(ctx context.Context, name string) (*catalog.System, error)
	Save(ctx context.Context, system *catalog.System) error
}

// GameStore saves games.
type GameStore interface {
	Save(ctx context.Context, game *catalog.Game) error
}

// TrackStore saves tracks. Save is called from several goroutines.
type TrackStore interface {
	Save(ctx context.Context, track *catalog.Track) error
}

// PlaylistStore saves playlists.
type PlaylistStore interface {
	Save(ctx context.Context, playlist *catalog.Playlist) error
}

// Repositories bundles the catalogue operations the importer needs.
type Repositories struct {
	Systems   SystemStore
	Games     GameStore
	Tracks    TrackStore
	Playlists PlaylistStore
}

// RepositoriesFrom wires the repositories of an open catalogue.
func RepositoriesFrom(store *catalog.Store) Repositories {
	return Repositories{
		Systems:   store.Systems,
		Games:     store.Games,
		Tracks:    store.Tracks,
		Playlists: store.Playlists,
	}
}

// Importer runs manifest imports against a catalogue.
type Importer struct {
	cfg        *config.Config
	repos      Repositories
	logger     *slog.Logger
	classifier *trackname.Classifier
	newID      func() string
	maxGames   int
	workers    int
	lockPath   string
}

// Option customizes an Importer.
type Option func(*Importer)

// WithIDGenerator replaces the UUID generator used for run ids and upload
// file names.
func WithIDGenerator(fn func() string) Option {
	return func(i *Importer) {
		if fn != nil {
			i.newID = fn
		}
	}
}

// WithMaxGames limits the number of manifest entries processed. Zero means
// every entry.
func WithMaxGames(n int) Option {
	return func(i *Importer) {
		if n >= 0 {
			i.maxGames = n
		}
	}
}

// WithLockPath overrides the lock file location.
func WithLockPath(path string) Option {
	return func(i *Importer) {
		if path != "" {
			i.lockPath = path
		}
	}
}

// New constructs an Importer. Defaults come from cfg.
func New(cfg *config.Config, repos Repositories, logger *slog.Logger, opts ...Option) *Importer {
	i := &Importer{
		cfg:        cfg,
		repos:      repos,
		logger:     logging.NewComponentLogger(logger, "importer"),
		classifier: trackname.New(cfg.Import.TrackExtension),
		newID:      uuid.NewString,
		maxGames:   cfg.Import.MaxGames,
		workers:    cfg.Import.PersistWorkers,
		lockPath:   cfg.LockPath(),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.workers <= 0 {
		i.workers = 1
	}
	return i
}

// GameResult describes one imported game.
type GameResult struct {
	System        string
	SystemCreated bool
	Game          string
	Archive       string
	GameID        int64
	PlaylistID    int64
	Tracks        int
	Drained       int
	Bytes         int64
	Duration      time.Duration
}

// Summary describes a finished or aborted run. Games lists the games that
// completed.
type Summary struct {
	RunID           string
	Manifest        string
	ManifestEntries int
	Skipped         int
	Games           []GameResult
	Duration        time.Duration
}

// Tracks returns the number of tracks imported across all games.
func (s *Summary) Tracks() int {
	total := 0
	for _, game := range s.Games {
		total += game.Tracks
	}
	return total
}

// Run imports the manifest at manifestPath. The returned summary is non-nil
// whenever the run got past the lock, including failed runs.
func (i *Importer) Run(ctx context.Context, manifestPath string) (*Summary, error) {
	if err := i.cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(i.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire import lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrImportRunning, i.lockPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			i.logger.Warn("failed to release import lock", logging.String("lock", i.lockPath), logging.Error(err))
		}
	}()

	runID := i.newID()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, i.logger)
	start := time.Now()
	summary := &Summary{RunID: runID, Manifest: manifestPath}

	m, err := manifest.Open(manifestPath)
	if err != nil {
		return summary, i.fail(logger, summary, start, err)
	}
	summary.ManifestEntries = m.Len()
	logger.Info("import started",
		logging.String("manifest", manifestPath),
		logging.Int("entries", m.Len()),
		logging.Int("max_games", i.maxGames),
	)

	for entry, err := range m.Entries() {
		if err != nil {
			return summary, i.fail(logger, summary, start, err)
		}
		if i.maxGames > 0 && len(summary.Games) >= i.maxGames {
			break
		}
		result, err := i.importGame(ctx, entry)
		if err != nil {
			return summary, i.fail(logger, summary, start, err)
		}
		summary.Games = append(summary.Games, result)
	}

	summary.Skipped = summary.ManifestEntries - len(summary.Games)
	summary.Duration = time.Since(start)
	logger.Info("import finished",
		logging.Int("games", len(summary.Games)),
		logging.Int("tracks", summary.Tracks()),
		logging.Int("skipped", summary.Skipped),
		logging.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func (i *Importer) fail(logger *slog.Logger, summary *Summary, start time.Time, err error) error {
	summary.Duration = time.Since(start)
	logger.Error("import failed",
		logging.Error(err),
		logging.String(logging.FieldErrorKind, ErrorKind(err)),
		logging.Int("games_completed", len(summary.Games)),
	)
	return err
}

func (i *Importer) importGame(ctx context.Context, entry manifest.Entry) (GameResult, error) {
	start := time.Now()
	result := GameResult{System: entry.System, Game: entry.Game, Archive: entry.Archive}
	ctx = logging.WithGame(logging.WithSystem(ctx, entry.System), entry.Game, entry.Archive)
	logger := logging.WithContext(ctx, i.logger)

	system, created, err := i.resolveSystem(ctx, entry.System)
	if err != nil {
		return result, err
	}
	result.SystemCreated = created

	game := catalog.NewGame(system, entry.Game, entry.Archive)
	if err := i.repos.Games.Save(ctx, game); err != nil {
		return result, fmt.Errorf("save game %q: %w", entry.Game, err)
	}
	result.GameID = game.ID

	sampler := logging.NewProgressSampler(25)
	extractor := archive.NewExtractor(i.classifier,
		archive.WithLogger(logger),
		archive.WithProgress(func(p archive.Progress) {
			if sampler.ShouldLog(p.Percent(), p.Archive) {
				logger.Info("archive progress",
					logging.Int64("read_bytes", p.Read),
					logging.Int64("total_bytes", p.Total),
					logging.Int("entries", p.Entries),
				)
			}
		}),
	)

	var tracks []*catalog.Track
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(i.workers)
	stats, extractErr := extractor.Extract(groupCtx, i.cfg.ArchivePath(entry.Archive), entry.Game,
		func(ctx context.Context, tr archive.Track) error {
			file := i.newID() + i.cfg.Import.StoredExtension
			n, err := fileutil.WriteStream(filepath.Join(i.cfg.Paths.UploadsDir, file), tr.Body, int64(tr.Size))
			if err != nil {
				return fmt.Errorf("write upload %s: %w", file, err)
			}
			result.Bytes += n

			track := catalog.NewTrack(tr.Name, tr.Ordinal, file, game)
			tracks = append(tracks, track)
			logger.Debug("track extracted",
				logging.String("entry", tr.Path),
				logging.String("ordinal", tr.Ordinal),
				logging.String("file", file),
				logging.Int64("bytes", n),
			)
			group.Go(func() error {
				if err := i.repos.Tracks.Save(ctx, track); err != nil {
					return fmt.Errorf("save track %q: %w", track.Name, err)
				}
				return nil
			})
			return nil
		})
	// Saves already issued must finish before the playlist is built or the
	// error is reported.
	if err := group.Wait(); err != nil {
		return result, err
	}
	if extractErr != nil {
		return result, extractErr
	}
	result.Tracks = stats.Tracks
	result.Drained = stats.Drained

	playlist := catalog.NewPlaylist(catalog.PlaylistName(game.Name), []*catalog.Game{game}, tracks)
	if err := i.repos.Playlists.Save(ctx, playlist); err != nil {
		return result, fmt.Errorf("save playlist %q: %w", playlist.Name, err)
	}
	result.PlaylistID = playlist.ID
	result.Duration = time.Since(start)

	logger.Info("game imported",
		logging.Int("tracks", result.Tracks),
		logging.Int("drained", result.Drained),
		logging.Int64("bytes", result.Bytes),
		logging.Int64("playlist_id", playlist.ID),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

// resolveSystem returns the system named name, creating and saving it when
// it does not exist yet.
func (i *Importer) resolveSystem(ctx context.Context, name string) (*catalog.System, bool, error) {
	system, err := i.repos.Systems.FindByName(ctx, name)
	if err != nil {
		return nil, false, fmt.Errorf("find system %q: %w", name, err)
	}
	if system != nil {
		return system, false, nil
	}
	system = catalog.NewSystem(name)
	if err := i.repos.Systems.Save(ctx, system); err != nil {
		return nil, false, fmt.Errorf("save system %q: %w", name, err)
	}
	return system, true, nil
}
