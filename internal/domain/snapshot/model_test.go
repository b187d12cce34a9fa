package snapshot

import "testing"

func TestRanks(t *testing.T) {
	rows := []Standing{
		{Gameweek: 12, EntryID: 101, Rank: 1},
		{Gameweek: 12, EntryID: 102, Rank: 2},
		{Gameweek: 12, EntryID: 103, Rank: 0},
	}

	ranks := Ranks(rows)
	if len(ranks) != 2 {
		t.Fatalf("unexpected rank count: got=%d want=%d", len(ranks), 2)
	}
	if ranks[101] != 1 || ranks[102] != 2 {
		t.Fatalf("unexpected ranks: got=%v", ranks)
	}
	if _, ok := ranks[103]; ok {
		t.Fatalf("unranked row should be skipped")
	}
}

func TestRankDelta(t *testing.T) {
	previous := map[int]int{101: 5, 102: 2}

	tests := []struct {
		name    string
		entryID int
		rank    int
		want    int
	}{
		{name: "moved up", entryID: 101, rank: 3, want: 2},
		{name: "moved down", entryID: 102, rank: 4, want: -2},
		{name: "held", entryID: 102, rank: 2, want: 0},
		{name: "no history", entryID: 999, rank: 1, want: 0},
		{name: "unranked now", entryID: 101, rank: 0, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := RankDelta(previous, tc.entryID, tc.rank)
			if got != tc.want {
				t.Fatalf("unexpected delta: got=%d want=%d", got, tc.want)
			}
		})
	}
}
