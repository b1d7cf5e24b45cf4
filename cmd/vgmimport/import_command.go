package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vgmimport/internal/catalog"
	"vgmimport/internal/importer"
	"vgmimport/internal/preflight"
)

type importGameJSON struct {
	System        string `json:"system"`
	SystemCreated bool   `json:"system_created"`
	Game          string `json:"game"`
	Archive       string `json:"archive"`
	GameID        int64  `json:"game_id"`
	PlaylistID    int64  `json:"playlist_id"`
	Tracks        int    `json:"tracks"`
	Drained       int    `json:"drained"`
	Bytes         int64  `json:"bytes"`
	DurationMS    int64  `json:"duration_ms"`
}

type importSummaryJSON struct {
	RunID           string           `json:"run_id"`
	Manifest        string           `json:"manifest"`
	ManifestEntries int              `json:"manifest_entries"`
	Skipped         int              `json:"skipped"`
	Tracks          int              `json:"tracks"`
	DurationMS      int64            `json:"duration_ms"`
	Games           []importGameJSON `json:"games"`
	Error           string           `json:"error,omitempty"`
	ErrorKind       string           `json:"error_kind,omitempty"`
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var maxGames int
	var manifestPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "import:vgmrips",
		Short: "Import every game of the vgmrips manifest into the catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var opts []importer.Option
			if cmd.Flags().Changed("max-games") {
				if maxGames < 0 {
					return fmt.Errorf("--max-games must be >= 0, got %d", maxGames)
				}
				opts = append(opts, importer.WithMaxGames(maxGames))
			}
			manifest := strings.TrimSpace(manifestPath)
			if manifest == "" {
				manifest = cfg.Paths.ManifestPath
			}

			if failed := preflight.Failed(preflight.RunDirectories(cfg)); len(failed) > 0 {
				out := cmd.ErrOrStderr()
				for _, line := range checkLines(failed, shouldColorize(out)) {
					fmt.Fprintln(out, line)
				}
				return fmt.Errorf("preflight failed: %s", failed[0].Detail)
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			return ctx.withStore(func(store *catalog.Store) error {
				imp := importer.New(cfg, importer.RepositoriesFrom(store), logger, opts...)
				summary, runErr := imp.Run(cmd.Context(), manifest)
				if summary != nil {
					report := buildImportSummary(summary, runErr)
					if err := writeOutput(cmd, asJSON, report, func() string {
						return renderImportSummary(summary)
					}); err != nil {
						return err
					}
				}
				if runErr != nil {
					return fmt.Errorf("import failed (%s): %w", importer.ErrorKind(runErr), runErr)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&maxGames, "max-games", 0, "Stop after N games; 0 imports every entry (default from config)")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Manifest to import instead of paths.manifest_path")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run summary as JSON")
	return cmd
}

func buildImportSummary(summary *importer.Summary, runErr error) importSummaryJSON {
	report := importSummaryJSON{
		RunID:           summary.RunID,
		Manifest:        summary.Manifest,
		ManifestEntries: summary.ManifestEntries,
		Skipped:         summary.Skipped,
		Tracks:          summary.Tracks(),
		DurationMS:      summary.Duration.Milliseconds(),
		Games:           make([]importGameJSON, 0, len(summary.Games)),
	}
	for _, game := range summary.Games {
		report.Games = append(report.Games, importGameJSON{
			System:        game.System,
			SystemCreated: game.SystemCreated,
			Game:          game.Game,
			Archive:       game.Archive,
			GameID:        game.GameID,
			PlaylistID:    game.PlaylistID,
			Tracks:        game.Tracks,
			Drained:       game.Drained,
			Bytes:         game.Bytes,
			DurationMS:    game.Duration.Milliseconds(),
		})
	}
	if runErr != nil {
		report.Error = runErr.Error()
		report.ErrorKind = importer.ErrorKind(runErr)
	}
	return report
}

func renderImportSummary(summary *importer.Summary) string {
	rows := make([][]string, 0, len(summary.Games))
	var bytes int64
	for _, game := range summary.Games {
		bytes += game.Bytes
		rows = append(rows, []string{
			game.System,
			game.Game,
			strconv.Itoa(game.Tracks),
			strconv.Itoa(game.Drained),
			humanize.Bytes(uint64(game.Bytes)),
			strconv.FormatInt(game.PlaylistID, 10),
			yesNo(game.SystemCreated),
		})
	}
	title := fmt.Sprintf("Run %s: %d of %d games", summary.RunID, len(summary.Games), summary.ManifestEntries)
	return renderTable(tableSpec{
		Title:   title,
		Headers: []string{"System", "Game", "Tracks", "Drained", "Size", "Playlist", "New System"},
		Rows:    rows,
		Footer: []string{
			"Total",
			humanize.Comma(int64(len(summary.Games))),
			humanize.Comma(int64(summary.Tracks())),
			"",
			humanize.Bytes(uint64(bytes)),
			"",
			"",
		},
		Aligns: []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	})
}
