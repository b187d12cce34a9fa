package snapshot

import "context"

type StandingRepository interface {
	Upsert(ctx context.Context, rows []Standing) error
	ListByGameweek(ctx context.Context, gameweek int) ([]Standing, error)
}

type FixtureResultRepository interface {
	Upsert(ctx context.Context, rows []FixtureResult) error
	ListByGameweek(ctx context.Context, gameweek int) ([]FixtureResult, error)
}

type TeamTableRepository interface {
	Upsert(ctx context.Context, table TeamTable) error
	Get(ctx context.Context, leagueKey string, gameweek int) (TeamTable, bool, error)
}
