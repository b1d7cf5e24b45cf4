package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vgmimport/internal/catalog"
)

type systemJSON struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Games     int    `json:"games"`
	CreatedAt string `json:"created_at,omitempty"`
}

type gameJSON struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	System    string `json:"system"`
	Archive   string `json:"archive"`
	Tracks    int    `json:"tracks,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type playlistJSON struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Tracks    int    `json:"tracks"`
	CreatedAt string `json:"created_at,omitempty"`
}

type trackJSON struct {
	Position int    `json:"position"`
	ID       int64  `json:"id"`
	Ordinal  string `json:"ordinal"`
	Name     string `json:"name"`
	File     string `json:"file"`
}

type gameDetailJSON struct {
	gameJSON
	Tracks []trackJSON `json:"tracks"`
}

type playlistDetailJSON struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	Games  []gameJSON  `json:"games"`
	Tracks []trackJSON `json:"tracks"`
}

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the imported catalogue",
	}
	catalogCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Output as JSON")

	catalogCmd.AddCommand(newCatalogSystemsCommand(ctx, &asJSON))
	catalogCmd.AddCommand(newCatalogGamesCommand(ctx, &asJSON))
	catalogCmd.AddCommand(newCatalogGameCommand(ctx, &asJSON))
	catalogCmd.AddCommand(newCatalogPlaylistsCommand(ctx, &asJSON))
	catalogCmd.AddCommand(newCatalogPlaylistCommand(ctx, &asJSON))
	catalogCmd.AddCommand(newCatalogStatsCommand(ctx, &asJSON))

	return catalogCmd
}

func newCatalogSystemsCommand(ctx *commandContext, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "systems",
		Short: "List systems with their game counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *catalog.Store) error {
				systems, err := store.Systems.List(cmd.Context())
				if err != nil {
					return err
				}
				if !*asJSON && len(systems) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No systems imported")
					return nil
				}
				payload := make([]systemJSON, 0, len(systems))
				rows := make([][]string, 0, len(systems))
				for _, system := range systems {
					payload = append(payload, systemJSON{
						ID:        system.ID,
						Name:      system.Name,
						Games:     system.Games,
						CreatedAt: formatTimestamp(system.CreatedAt),
					})
					rows = append(rows, []string{
						strconv.FormatInt(system.ID, 10),
						system.Name,
						strconv.Itoa(system.Games),
						formatTimestamp(system.CreatedAt),
					})
				}
				return writeOutput(cmd, *asJSON, payload, func() string {
					return renderTable(tableSpec{
						Headers: []string{"ID", "System", "Games", "Created"},
						Rows:    rows,
						Aligns:  []columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
					})
				})
			})
		},
	}
}

func newCatalogGamesCommand(ctx *commandContext, asJSON *bool) *cobra.Command {
	var systemFilter string

	cmd := &cobra.Command{
		Use:   "games",
		Short: "List games with their system and track counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *catalog.Store) error {
				games, err := store.Games.List(cmd.Context())
				if err != nil {
					return err
				}
				filter := strings.TrimSpace(systemFilter)
				payload := make([]gameJSON, 0, len(games))
				rows := make([][]string, 0, len(games))
				for _, game := range games {
					if filter != "" && !strings.EqualFold(game.System, filter) {
						continue
					}
					payload = append(payload, toGameJSON(game))
					rows = append(rows, []string{
						strconv.FormatInt(game.ID, 10),
						game.System,
						game.Name,
						game.Archive,
						strconv.Itoa(game.Tracks),
					})
				}
				if !*asJSON && len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No games imported")
					return nil
				}
				return writeOutput(cmd, *asJSON, payload, func() string {
					return renderTable(tableSpec{
						Headers: []string{"ID", "System", "Game", "Archive", "Tracks"},
						Rows:    rows,
						Aligns:  []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
					})
				})
			})
		},
	}
	cmd.Flags().StringVar(&systemFilter, "system", "", "Only list games of this system")
	return cmd
}

func newCatalogGameCommand(ctx *commandContext, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "game <id>",
		Short: "Show a game with its tracks ordered by ordinal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("game", args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *catalog.Store) error {
				game, err := store.Games.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if game == nil {
					return fmt.Errorf("game %d not found", id)
				}
				tracks, err := store.Tracks.ListByGame(cmd.Context(), id)
				if err != nil {
					return err
				}
				detail := gameDetailJSON{
					gameJSON: gameJSON{
						ID:        game.ID,
						Name:      game.Name,
						System:    systemName(game),
						Archive:   game.Archive,
						CreatedAt: formatTimestamp(game.CreatedAt),
					},
					Tracks: make([]trackJSON, 0, len(tracks)),
				}
				rows := make([][]string, 0, len(tracks))
				for i, track := range tracks {
					detail.Tracks = append(detail.Tracks, trackJSON{
						Position: i + 1,
						ID:       track.ID,
						Ordinal:  track.Ordinal,
						Name:     track.Name,
						File:     track.File,
					})
					rows = append(rows, []string{track.Ordinal, track.Name, track.File})
				}
				return writeOutput(cmd, *asJSON, detail, func() string {
					return renderTable(tableSpec{
						Title:   fmt.Sprintf("%s (%s) · %s", game.Name, detail.System, game.Archive),
						Headers: []string{"Ordinal", "Track", "File"},
						Rows:    rows,
						Footer:  []string{"Tracks", humanize.Comma(int64(len(tracks)))},
						Aligns:  []columnAlignment{alignRight, alignLeft, alignLeft},
					})
				})
			})
		},
	}
}

func newCatalogPlaylistsCommand(ctx *commandContext, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "playlists",
		Short: "List playlists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *catalog.Store) error {
				playlists, err := store.Playlists.List(cmd.Context())
				if err != nil {
					return err
				}
				if !*asJSON && len(playlists) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No playlists")
					return nil
				}
				payload := make([]playlistJSON, 0, len(playlists))
				rows := make([][]string, 0, len(playlists))
				for _, playlist := range playlists {
					payload = append(payload, playlistJSON{
						ID:        playlist.ID,
						Name:      playlist.Name,
						Tracks:    playlist.Tracks,
						CreatedAt: formatTimestamp(playlist.CreatedAt),
					})
					rows = append(rows, []string{
						strconv.FormatInt(playlist.ID, 10),
						playlist.Name,
						strconv.Itoa(playlist.Tracks),
						formatTimestamp(playlist.CreatedAt),
					})
				}
				return writeOutput(cmd, *asJSON, payload, func() string {
					return renderTable(tableSpec{
						Headers: []string{"ID", "Playlist", "Tracks", "Created"},
						Rows:    rows,
						Aligns:  []columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
					})
				})
			})
		},
	}
}

func newCatalogPlaylistCommand(ctx *commandContext, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "playlist <id>",
		Short: "Show a playlist with its tracks in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("playlist", args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *catalog.Store) error {
				playlist, err := store.Playlists.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if playlist == nil {
					return fmt.Errorf("playlist %d not found", id)
				}
				detail := playlistDetailJSON{
					ID:     playlist.ID,
					Name:   playlist.Name,
					Games:  make([]gameJSON, 0, len(playlist.Games)),
					Tracks: make([]trackJSON, 0, len(playlist.Tracks)),
				}
				for _, game := range playlist.Games {
					detail.Games = append(detail.Games, gameJSON{
						ID:      game.ID,
						Name:    game.Name,
						System:  systemName(game),
						Archive: game.Archive,
					})
				}
				rows := make([][]string, 0, len(playlist.Tracks))
				for i, track := range playlist.Tracks {
					detail.Tracks = append(detail.Tracks, trackJSON{
						Position: i + 1,
						ID:       track.ID,
						Ordinal:  track.Ordinal,
						Name:     track.Name,
						File:     track.File,
					})
					rows = append(rows, []string{strconv.Itoa(i + 1), track.Ordinal, track.Name, track.File})
				}
				return writeOutput(cmd, *asJSON, detail, func() string {
					var title strings.Builder
					title.WriteString(playlist.Name)
					for _, game := range detail.Games {
						fmt.Fprintf(&title, " · %s (%s)", game.Name, game.System)
					}
					return renderTable(tableSpec{
						Title:   title.String(),
						Headers: []string{"#", "Ordinal", "Track", "File"},
						Rows:    rows,
						Aligns:  []columnAlignment{alignRight, alignRight, alignLeft, alignLeft},
					})
				})
			})
		},
	}
}

func newCatalogStatsCommand(ctx *commandContext, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show row counts per entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *catalog.Store) error {
				counts, err := store.Counts(cmd.Context())
				if err != nil {
					return err
				}
				return writeOutput(cmd, *asJSON, counts, func() string {
					return renderTable(tableSpec{
						Title:   store.Path(),
						Headers: []string{"Entity", "Rows"},
						Rows: [][]string{
							{"Systems", humanize.Comma(int64(counts.Systems))},
							{"Games", humanize.Comma(int64(counts.Games))},
							{"Tracks", humanize.Comma(int64(counts.Tracks))},
							{"Playlists", humanize.Comma(int64(counts.Playlists))},
						},
						Aligns: []columnAlignment{alignLeft, alignRight},
					})
				})
			})
		},
	}
}

func toGameJSON(game catalog.GameSummary) gameJSON {
	return gameJSON{
		ID:        game.ID,
		Name:      game.Name,
		System:    game.System,
		Archive:   game.Archive,
		Tracks:    game.Tracks,
		CreatedAt: formatTimestamp(game.CreatedAt),
	}
}

func systemName(game *catalog.Game) string {
	if game.System == nil {
		return ""
	}
	return game.System.Name
}

func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}
