package memory

import (
	"context"
	"testing"

	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/domain/snapshot"
)

func TestStandingRepository_UpsertReplacesByEntry(t *testing.T) {
	t.Parallel()

	repo := NewStandingRepository()
	ctx := context.Background()

	err := repo.Upsert(ctx, []snapshot.Standing{
		{Gameweek: 5, EntryID: 20, Rank: 2, TotalPoints: 40},
		{Gameweek: 5, EntryID: 10, Rank: 1, TotalPoints: 52},
	})
	if err != nil {
		t.Fatalf("unexpected upsert error: %v", err)
	}

	err = repo.Upsert(ctx, []snapshot.Standing{
		{Gameweek: 5, EntryID: 20, Rank: 2, TotalPoints: 44},
	})
	if err != nil {
		t.Fatalf("unexpected upsert error: %v", err)
	}

	rows, err := repo.ListByGameweek(ctx, 5)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("unexpected row count: got=%d want=%d", len(rows), 2)
	}
	if rows[0].EntryID != 10 || rows[1].EntryID != 20 {
		t.Fatalf("unexpected rank order: got=%d,%d want=10,20", rows[0].EntryID, rows[1].EntryID)
	}
	if rows[1].TotalPoints != 44 {
		t.Fatalf("unexpected total after replace: got=%d want=%d", rows[1].TotalPoints, 44)
	}

	empty, err := repo.ListByGameweek(ctx, 6)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("unexpected rows for unknown gameweek: got=%d want=0", len(empty))
	}
}

func TestFixtureResultRepository_UpsertReplacesByPair(t *testing.T) {
	t.Parallel()

	repo := NewFixtureResultRepository()
	ctx := context.Background()

	err := repo.Upsert(ctx, []snapshot.FixtureResult{
		{Gameweek: 5, Entry1: 10, Entry2: 20, Entry1Points: 30, Entry2Points: 30},
		{Gameweek: 5, Entry1: 30, Entry2: 40, Entry1Points: 51, Entry2Points: 38, Winner: 1},
	})
	if err != nil {
		t.Fatalf("unexpected upsert error: %v", err)
	}

	err = repo.Upsert(ctx, []snapshot.FixtureResult{
		{Gameweek: 5, Entry1: 10, Entry2: 20, Entry1Points: 35, Entry2Points: 30, Winner: 1},
	})
	if err != nil {
		t.Fatalf("unexpected upsert error: %v", err)
	}

	rows, err := repo.ListByGameweek(ctx, 5)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("unexpected row count: got=%d want=%d", len(rows), 2)
	}
	if rows[0].Entry1 != 10 || rows[1].Entry1 != 30 {
		t.Fatalf("unexpected insertion order: got=%d,%d want=10,30", rows[0].Entry1, rows[1].Entry1)
	}
	if rows[0].Entry1Points != 35 || rows[0].Winner != 1 {
		t.Fatalf("unexpected pair after replace: points=%d winner=%d", rows[0].Entry1Points, rows[0].Winner)
	}
}

func TestTeamTableRepository_SeededGet(t *testing.T) {
	t.Parallel()

	repo := NewTeamTableRepository([]snapshot.TeamTable{
		{LeagueKey: "duos", Gameweek: 12, Points: league.Table{"Alpha": 9, "Beta": 6}},
	})
	ctx := context.Background()

	table, ok, err := repo.Get(ctx, "duos", 12)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if !ok {
		t.Fatalf("expected seeded table")
	}
	if table.Points["Alpha"] != 9 {
		t.Fatalf("unexpected seeded points: got=%d want=%d", table.Points["Alpha"], 9)
	}

	_, ok, err = repo.Get(ctx, "duos", 13)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if ok {
		t.Fatalf("expected no table for unknown gameweek")
	}
}

func TestTeamTableRepository_ClonesOnReadAndWrite(t *testing.T) {
	t.Parallel()

	seedPoints := league.Table{"Alpha": 9}
	repo := NewTeamTableRepository([]snapshot.TeamTable{
		{LeagueKey: "duos", Gameweek: 12, Points: seedPoints},
	})
	ctx := context.Background()

	seedPoints["Alpha"] = 99

	table, _, err := repo.Get(ctx, "duos", 12)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if table.Points["Alpha"] != 9 {
		t.Fatalf("seed mutation leaked into store: got=%d want=%d", table.Points["Alpha"], 9)
	}

	table.Points["Alpha"] = 50

	again, _, err := repo.Get(ctx, "duos", 12)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if again.Points["Alpha"] != 9 {
		t.Fatalf("read mutation leaked into store: got=%d want=%d", again.Points["Alpha"], 9)
	}
}

func TestSeedTeamTables_FlattensBaseTables(t *testing.T) {
	t.Parallel()

	defs := league.Definitions{
		TeamLeagues: []league.TeamLeague{
			{
				Key: "duos",
				BaseTables: map[int]league.Table{
					12: {"Alpha": 9, "Beta": 6},
					15: {"Alpha": 12, "Beta": 9},
				},
			},
			{
				Key: "trios",
				BaseTables: map[int]league.Table{
					12: {"North": 3},
				},
			},
		},
	}

	tables := SeedTeamTables(defs)
	if len(tables) != 3 {
		t.Fatalf("unexpected table count: got=%d want=%d", len(tables), 3)
	}

	repo := NewTeamTableRepository(tables)
	table, ok, err := repo.Get(context.Background(), "duos", 15)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if !ok {
		t.Fatalf("expected table for duos gameweek 15")
	}
	if table.Points["Alpha"] != 12 {
		t.Fatalf("unexpected flattened points: got=%d want=%d", table.Points["Alpha"], 12)
	}
}
