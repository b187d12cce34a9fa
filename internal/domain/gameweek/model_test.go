package gameweek

import (
	"errors"
	"testing"
)

func TestCurrent(t *testing.T) {
	tests := []struct {
		name      string
		events    []Event
		want      int
		targetErr error
	}{
		{
			name: "current flag wins",
			events: []Event{
				{ID: 6, Finished: true, DataChecked: true},
				{ID: 7, IsCurrent: true},
				{ID: 8, IsNext: true},
			},
			want: 7,
		},
		{
			name: "next flag before season start",
			events: []Event{
				{ID: 1, IsNext: true},
				{ID: 2},
			},
			want: 1,
		},
		{
			name: "highest completed after season end",
			events: []Event{
				{ID: 36, Finished: true, DataChecked: true},
				{ID: 37, Finished: true, DataChecked: true},
				{ID: 38, Finished: true, DataChecked: true},
			},
			want: 38,
		},
		{
			name: "finished without data check does not count",
			events: []Event{
				{ID: 4, Finished: true, DataChecked: true},
				{ID: 5, Finished: true},
			},
			want: 4,
		},
		{
			name:      "no marker at all",
			events:    []Event{{ID: 1}, {ID: 2}},
			targetErr: ErrNoCurrent,
		},
		{
			name:      "empty events",
			events:    nil,
			targetErr: ErrNoCurrent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Current(tt.events)
			if tt.targetErr != nil {
				if !errors.Is(err, tt.targetErr) {
					t.Fatalf("expected error %v, got %v", tt.targetErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Fatalf("unexpected gameweek: got=%d want=%d", got, tt.want)
			}
		})
	}
}

func TestEventComplete(t *testing.T) {
	if (Event{Finished: true}).Complete() {
		t.Fatal("finished without data check must not be complete")
	}
	if !(Event{Finished: true, DataChecked: true}).Complete() {
		t.Fatal("finished and checked must be complete")
	}
}
