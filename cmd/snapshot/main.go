package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/rabsht/fpl-h2h/external/fpl"
	"github.com/rabsht/fpl-h2h/internal/app"
	"github.com/rabsht/fpl-h2h/internal/config"
	"github.com/rabsht/fpl-h2h/internal/domain/gameweek"
	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/domain/scoring"
	"github.com/rabsht/fpl-h2h/internal/domain/snapshot"
	"github.com/rabsht/fpl-h2h/internal/infrastructure/repository/postgres"
	"github.com/rabsht/fpl-h2h/internal/platform/logging"
	"github.com/rabsht/fpl-h2h/internal/usecase"
)

// leagueRecompute is one league's settled-gameweek output: the table the
// next gameweek builds on, plus the per-team lines behind it.
type leagueRecompute struct {
	LeagueKey string         `json:"leagueKey"`
	LeagueID  int            `json:"leagueId"`
	Gameweek  int            `json:"gameweek"`
	Table     map[string]int `json:"table"`
	Teams     []teamLine     `json:"teams"`
	Persisted bool           `json:"persisted"`
}

type teamLine struct {
	Team           string `json:"team"`
	GameweekPoints int    `json:"gameweekPoints"`
	Result         string `json:"result"`
	BasePoints     int    `json:"basePoints"`
	TablePoints    int    `json:"tablePoints"`
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	gw, err := parseGameweek(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	defs, err := config.LoadDefinitions(cfg.LeagueDefinitionsPath)
	if err != nil {
		log.Fatalf("load league definitions: %v", err)
	}

	leagues, err := selectLeagues(defs, os.Args[2:])
	if err != nil {
		log.Fatal(err)
	}
	if len(leagues) == 0 {
		log.Fatal("no team leagues configured")
	}

	persist, err := persistRequested()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewNop()
	client := app.NewFPLClient(cfg, logger)
	feed := usecase.NewFeedService(client, usecase.FeedConfig{
		CoreTTL:        cfg.CacheCoreTTL,
		LeagueTTL:      cfg.CacheLeagueTTL,
		StaleFor:       cfg.CacheStaleFor,
		PostponedClubs: cfg.PostponedClubs,
	}, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	settled, err := gameweekSettled(ctx, feed, gw)
	if err != nil {
		log.Fatalf("check gameweek state: %v", err)
	}
	if !settled {
		if persist {
			log.Fatalf("gameweek %d official data is not final, refusing to persist", gw)
		}
		log.Printf("WARNING: gameweek %d official data is not final, totals may still move", gw)
	}

	var tables snapshot.TeamTableRepository
	if persist {
		if cfg.DBURL == "" {
			log.Fatal("SNAPSHOT_PERSIST requires DB_URL")
		}
		db, err := app.OpenDB(cfg)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer db.Close()
		tables = postgres.NewTeamTableRepository(db)
	}

	stats, err := client.FetchLiveStats(ctx, gw)
	if err != nil {
		log.Fatalf("fetch live stats: %v", err)
	}

	out := make([]leagueRecompute, 0, len(leagues))
	for _, l := range leagues {
		recomputed, err := recomputeLeague(ctx, client, feed, tables, l, gw, stats)
		if err != nil {
			log.Fatalf("recompute %s: %v", l.Key, err)
		}
		out = append(out, recomputed)
	}

	doc, err := sonic.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("encode output: %v", err)
	}
	fmt.Println(string(doc))
}

// recomputeLeague settles one league's gameweek: official picks totals
// per roster team, head-to-head outcomes from the pairings, and the
// resulting table on top of the prior base.
func recomputeLeague(ctx context.Context, client *fpl.Client, feed *usecase.FeedService, tables snapshot.TeamTableRepository, l league.TeamLeague, gw int, stats scoring.Stats) (leagueRecompute, error) {
	picks, missing, err := feed.PicksByEntry(ctx, gw, l.EntryIDs())
	if err != nil {
		return leagueRecompute{}, fmt.Errorf("fetch picks: %w", err)
	}
	for _, entryID := range missing {
		log.Printf("league %s: no picks for entry %d, counted as zero", l.Key, entryID)
	}

	byEntry := make(map[int]league.ManagerScore, len(picks))
	for entryID, p := range picks {
		byEntry[entryID] = league.ManagerScore{
			EntryID: entryID,
			Points:  scoring.OfficialPicksTotal(p, stats, l.Rules),
		}
	}
	scores := league.SumTeams(l, byEntry)

	h2h, err := client.FetchH2HMatches(ctx, l.ID, gw)
	if err != nil {
		return leagueRecompute{}, fmt.Errorf("fetch matches: %w", err)
	}
	pairings := league.MapPairings(h2h, l)
	matches := make([]league.TeamMatch, 0, len(pairings))
	for _, pairing := range pairings {
		m := league.TeamMatch{
			Team1:       pairing.Team1,
			Team1Points: scores[pairing.Team1].Points,
			Team2:       pairing.Team2,
			Team2Points: scores[pairing.Team2].Points,
		}
		switch {
		case m.Team1Points > m.Team2Points:
			m.Winner = 1
		case m.Team2Points > m.Team1Points:
			m.Winner = 2
		}
		matches = append(matches, m)
	}
	results := league.TeamResults(matches)

	base := resolveBase(ctx, tables, l, gw)
	next := make(league.Table, len(l.Teams))
	lines := make([]teamLine, 0, len(l.Teams))
	for _, team := range l.Teams {
		result, ok := results[team.Name]
		if !ok {
			result = league.ResultNone
		}
		points := base[team.Name] + result.LeaguePoints()
		next[team.Name] = points
		lines = append(lines, teamLine{
			Team:           team.Name,
			GameweekPoints: scores[team.Name].Points,
			Result:         string(result),
			BasePoints:     base[team.Name],
			TablePoints:    points,
		})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].TablePoints != lines[j].TablePoints {
			return lines[i].TablePoints > lines[j].TablePoints
		}
		return lines[i].Team < lines[j].Team
	})

	persisted := false
	if tables != nil {
		if err := tables.Upsert(ctx, snapshot.TeamTable{LeagueKey: l.Key, Gameweek: gw, Points: next}); err != nil {
			return leagueRecompute{}, fmt.Errorf("persist table: %w", err)
		}
		persisted = true
	}

	return leagueRecompute{
		LeagueKey: l.Key,
		LeagueID:  l.ID,
		Gameweek:  gw,
		Table:     next,
		Teams:     lines,
		Persisted: persisted,
	}, nil
}

// resolveBase finds the table the gameweek builds on, the same way the
// live projection does: the configured table for the previous gameweek,
// then a persisted one, then the nearest configured fallback.
func resolveBase(ctx context.Context, tables snapshot.TeamTableRepository, l league.TeamLeague, gw int) league.Table {
	prev := gw - 1
	if table, ok := l.BaseTables[prev]; ok {
		return table
	}
	if tables != nil {
		stored, ok, err := tables.Get(ctx, l.Key, prev)
		if err != nil {
			log.Printf("league %s: stored table unavailable: %v", l.Key, err)
		} else if ok && len(stored.Points) > 0 {
			return stored.Points
		}
	}
	if table, _, ok := l.BaseTable(prev); ok {
		return table
	}
	return league.Table{}
}

func gameweekSettled(ctx context.Context, feed *usecase.FeedService, gw int) (bool, error) {
	boot, err := feed.Bootstrap(ctx)
	if err != nil {
		return false, err
	}
	event, ok := gameweek.Find(boot.Events, gw)
	if !ok {
		return false, fmt.Errorf("gameweek %d not in the schedule", gw)
	}
	return event.Complete(), nil
}

func parseGameweek(raw string) (int, error) {
	gw, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid gameweek %q: %w", raw, err)
	}
	if gw < 1 {
		return 0, fmt.Errorf("gameweek must be >= 1")
	}
	return gw, nil
}

func selectLeagues(defs league.Definitions, keys []string) ([]league.TeamLeague, error) {
	if len(keys) == 0 {
		return defs.TeamLeagues, nil
	}
	out := make([]league.TeamLeague, 0, len(keys))
	for _, key := range keys {
		l, ok := defs.TeamLeagueByKey(strings.TrimSpace(key))
		if !ok {
			return nil, fmt.Errorf("unknown team league %q", key)
		}
		out = append(out, l)
	}
	return out, nil
}

func persistRequested() (bool, error) {
	raw := strings.TrimSpace(os.Getenv("SNAPSHOT_PERSIST"))
	if raw == "" {
		return false, nil
	}
	persist, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parse SNAPSHOT_PERSIST: %w", err)
	}
	return persist, nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "usage: %s <gameweek> [league-key ...]\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "recomputes settled team league tables from official picks and prints them as JSON")
	fmt.Fprintln(os.Stderr, "set SNAPSHOT_PERSIST=true (with DB_URL) to store each table for the next gameweek")
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s 13\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "  %s 13 cities\n", filepath.Base(os.Args[0]))
}
