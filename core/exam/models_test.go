package exam

import (
	"encoding/json"
	"testing"
)

func TestScoresAverage(t *testing.T) {
	tests := []struct {
		name   string
		scores Scores
		want   float64
	}{
		{name: "all zero", scores: Scores{}, want: 0},
		{name: "all tens", scores: Scores{10, 10, 10, 10}, want: 10},
		{name: "passing sheet", scores: Scores{Kihon: 8, Kata: 7, Kumite: 6, Gerais: 5}, want: 6.5},
		{name: "failing sheet", scores: Scores{Kihon: 8, Kata: 7, Kumite: 0, Gerais: 5}, want: 5},
		{name: "rounds up", scores: Scores{Kihon: 7.5, Kata: 7, Kumite: 7, Gerais: 7}, want: 7.1},
		{name: "rounds down", scores: Scores{Kihon: 6.1, Kata: 6, Kumite: 6, Gerais: 6}, want: 6},
		{name: "exact pass mark", scores: Scores{Kihon: 6, Kata: 6, Kumite: 6, Gerais: 6}, want: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scores.Average(); got != tt.want {
				t.Errorf("Average() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnrollmentGrade(t *testing.T) {
	tests := []struct {
		name        string
		scores      Scores
		wantAverage float64
		wantPassed  bool
	}{
		{name: "zeroed scorecard fails", scores: Scores{}, wantAverage: 0, wantPassed: false},
		{name: "average at pass mark passes", scores: Scores{6, 6, 6, 6}, wantAverage: 6, wantPassed: true},
		{name: "just below pass mark fails", scores: Scores{6, 6, 6, 5.5}, wantAverage: 5.9, wantPassed: false},
		{name: "above pass mark passes", scores: Scores{Kihon: 8, Kata: 7, Kumite: 6, Gerais: 5}, wantAverage: 6.5, wantPassed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enrl := Enrollment{Scores: tt.scores}
			enrl.Grade()
			if enrl.Average != tt.wantAverage {
				t.Errorf("Grade() average = %v, want %v", enrl.Average, tt.wantAverage)
			}
			if enrl.Passed != tt.wantPassed {
				t.Errorf("Grade() passed = %v, want %v", enrl.Passed, tt.wantPassed)
			}

			// grading the same sheet twice must not change the outcome
			enrl.Grade()
			if enrl.Average != tt.wantAverage || enrl.Passed != tt.wantPassed {
				t.Errorf("Grade() not idempotent: average = %v, passed = %v", enrl.Average, enrl.Passed)
			}
		})
	}
}

func TestScoreUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    float64
		wantErr bool
	}{
		{name: "number", data: `7.5`, want: 7.5},
		{name: "integer", data: `8`, want: 8},
		{name: "numeric string", data: `"6.5"`, want: 6.5},
		{name: "padded numeric string", data: `" 9 "`, want: 9},
		{name: "empty string is zero", data: `""`, want: 0},
		{name: "blank string is zero", data: `"  "`, want: 0},
		{name: "non-numeric string", data: `"lol"`, wantErr: true},
		{name: "bool", data: `true`, wantErr: true},
		{name: "object", data: `{}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Score
			err := json.Unmarshal([]byte(tt.data), &s)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && float64(s) != tt.want {
				t.Errorf("UnmarshalJSON() = %v, want %v", float64(s), tt.want)
			}
		})
	}
}

func TestScoreUpdateApply(t *testing.T) {
	scoPtr := func(f float64) *Score { s := Score(f); return &s }

	tests := []struct {
		name   string
		update ScoreUpdate
		want   Scores
	}{
		{name: "empty update keeps scores", update: ScoreUpdate{}, want: Scores{Kihon: 8, Kata: 7, Kumite: 6, Gerais: 5}},
		{
			name:   "single component",
			update: ScoreUpdate{Kumite: scoPtr(0)},
			want:   Scores{Kihon: 8, Kata: 7, Kumite: 0, Gerais: 5},
		},
		{
			name:   "all components",
			update: ScoreUpdate{Kihon: scoPtr(1), Kata: scoPtr(2), Kumite: scoPtr(3), Gerais: scoPtr(4)},
			want:   Scores{Kihon: 1, Kata: 2, Kumite: 3, Gerais: 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := Scores{Kihon: 8, Kata: 7, Kumite: 6, Gerais: 5}
			tt.update.Apply(&scores)
			if scores != tt.want {
				t.Errorf("Apply() = %+v, want %+v", scores, tt.want)
			}
		})
	}
}

func TestNewExamValidate(t *testing.T) {
	tests := []struct {
		name    string
		ne      NewExam
		wantErr bool
	}{
		{
			name: "ok",
			ne:   NewExam{EventName: "Exame Nov", Date: "2025-11-20", Time: "09:00", Location: "Dojo Central", StudentIDs: []string{"s1"}},
		},
		{
			name:    "missing event name",
			ne:      NewExam{Date: "2025-11-20", Time: "09:00", Location: "Dojo Central", StudentIDs: []string{"s1"}},
			wantErr: true,
		},
		{
			name:    "whitespace only location",
			ne:      NewExam{EventName: "Exame Nov", Date: "2025-11-20", Time: "09:00", Location: "   ", StudentIDs: []string{"s1"}},
			wantErr: true,
		},
		{
			name:    "empty roster",
			ne:      NewExam{EventName: "Exame Nov", Date: "2025-11-20", Time: "09:00", Location: "Dojo Central", StudentIDs: []string{}},
			wantErr: true,
		},
		{
			name:    "nil roster",
			ne:      NewExam{EventName: "Exame Nov", Date: "2025-11-20", Time: "09:00", Location: "Dojo Central"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.ne.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
