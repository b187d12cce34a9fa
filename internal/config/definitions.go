package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/domain/scoring"
)

// definitionsFile is the on-disk shape of the league definitions document.
// Structural checks live in the validator tags; cross-field rules (roster
// size against team size, duplicate entries) belong to the domain types.
type definitionsFile struct {
	Individual  individualDef   `json:"individual" validate:"required"`
	TeamLeagues []teamLeagueDef `json:"teamLeagues" validate:"dive"`
	Classics    []classicDef    `json:"classicLeagues" validate:"dive"`
}

type individualDef struct {
	ID       int      `json:"id" validate:"required,gt=0"`
	Name     string   `json:"name"`
	Excluded []string `json:"excluded"`
}

type teamLeagueDef struct {
	Key        string                    `json:"key" validate:"required,max=64"`
	ID         int                       `json:"id" validate:"required,gt=0"`
	Name       string                    `json:"name" validate:"required"`
	Rules      rulesDef                  `json:"rules" validate:"required"`
	Teams      map[string][]int          `json:"teams" validate:"required,min=2,dive,min=1,dive,gt=0"`
	BaseTables map[string]map[string]int `json:"baseTables"`
}

type rulesDef struct {
	TeamSize               int    `json:"teamSize" validate:"required,gt=0"`
	TripleCaptainCap       int    `json:"tripleCaptainCap" validate:"required,oneof=2 3"`
	PointSystem            string `json:"pointSystem" validate:"required,oneof=h2h-projected official-h2h-total classic-official"`
	BenchBoostEnabled      bool   `json:"benchBoostEnabled"`
	BonusProjectionEnabled bool   `json:"bonusProjectionEnabled"`
}

type classicDef struct {
	ID     int    `json:"id" validate:"required,gt=0"`
	Name   string `json:"name" validate:"required"`
	Cutoff int    `json:"cutoff" validate:"gte=0"`
}

// LoadDefinitions reads and validates the league definitions document the
// deployment serves. Every league view the service renders is named here.
func LoadDefinitions(path string) (league.Definitions, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return league.Definitions{}, fmt.Errorf("read league definitions: %w", err)
	}

	var file definitionsFile
	if err := sonic.Unmarshal(raw, &file); err != nil {
		return league.Definitions{}, fmt.Errorf("decode league definitions %s: %w", path, err)
	}
	if err := validator.New().Struct(file); err != nil {
		return league.Definitions{}, fmt.Errorf("invalid league definitions %s: %w", path, err)
	}

	defs := league.Definitions{
		Individual: league.Individual{
			ID:       file.Individual.ID,
			Name:     file.Individual.Name,
			Excluded: file.Individual.Excluded,
		},
	}

	for _, def := range file.TeamLeagues {
		teamLeague, err := def.toDomain()
		if err != nil {
			return league.Definitions{}, fmt.Errorf("league definitions %s: %w", path, err)
		}
		defs.TeamLeagues = append(defs.TeamLeagues, teamLeague)
	}

	for _, def := range file.Classics {
		defs.Classics = append(defs.Classics, league.Classic{
			ID:     def.ID,
			Name:   def.Name,
			Cutoff: def.Cutoff,
		})
	}

	if err := defs.Validate(); err != nil {
		return league.Definitions{}, fmt.Errorf("invalid league definitions %s: %w", path, err)
	}

	return defs, nil
}

func (d teamLeagueDef) toDomain() (league.TeamLeague, error) {
	out := league.TeamLeague{
		Key:  d.Key,
		ID:   d.ID,
		Name: d.Name,
		Rules: scoring.Rules{
			TeamSize:               d.Rules.TeamSize,
			TripleCaptainCap:       d.Rules.TripleCaptainCap,
			PointSystem:            scoring.PointSystem(d.Rules.PointSystem),
			BenchBoostEnabled:      d.Rules.BenchBoostEnabled,
			BonusProjectionEnabled: d.Rules.BonusProjectionEnabled,
		},
	}

	// JSON objects carry no order; sort rosters by name so every load
	// produces the same league layout.
	names := make([]string, 0, len(d.Teams))
	for name := range d.Teams {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out.Teams = append(out.Teams, league.RosterTeam{
			Name:    name,
			Entries: append([]int(nil), d.Teams[name]...),
		})
	}

	if len(d.BaseTables) > 0 {
		out.BaseTables = make(map[int]league.Table, len(d.BaseTables))
		for rawGW, table := range d.BaseTables {
			gw, err := strconv.Atoi(rawGW)
			if err != nil || gw <= 0 {
				return league.TeamLeague{}, fmt.Errorf("league %s: base table key %q is not a gameweek number", d.Key, rawGW)
			}
			points := make(league.Table, len(table))
			for team, value := range table {
				points[team] = value
			}
			out.BaseTables[gw] = points
		}
	}

	return out, nil
}
