package exam

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tbahati/dojokai/core"
)

// PassMark is the minimum average a student needs to be approved.
const PassMark = 6.0

type Exam struct {
	ID              string    `json:"id"`
	EventName       string    `json:"nome_evento"`
	Date            string    `json:"data"`
	Time            string    `json:"hora"`
	Location        string    `json:"local"`
	EnrollmentCount int       `json:"total_inscricoes"`
	CreatedAt       time.Time `json:"created_at"` // UTC
}

// Scores holds the four component scores of a scorecard.
type Scores struct {
	Kihon  float64 `json:"kihon"`
	Kata   float64 `json:"kata"`
	Kumite float64 `json:"kumite"`
	Gerais float64 `json:"gerais"`
}

// Average returns the mean of the four components rounded to one decimal.
func (s Scores) Average() float64 {
	return math.Round((s.Kihon+s.Kata+s.Kumite+s.Gerais)/4*10) / 10
}

// Enrollment is one student's scorecard in one exam.
type Enrollment struct {
	ID          string      `json:"id"`
	ExamID      string      `json:"-"`
	StudentID   string      `json:"-"`
	StudentName string      `json:"aluno_nome"`
	StudentRank string      `json:"aluno_faixa"`
	Scores      Scores      `json:"notas"`
	Average     float64     `json:"media"`
	Passed      bool        `json:"aprovado"`
	Remark      null.String `json:"observacao"`
}

// Grade recomputes the derived media/aprovado pair from the component
// scores. The two fields are only ever written together so they cannot
// go stale relative to their sources.
func (e *Enrollment) Grade() {
	e.Average = e.Scores.Average()
	e.Passed = e.Average >= PassMark
}

// NewExam contains information needed to schedule a new exam, including
// the roster of students to enroll.
type NewExam struct {
	EventName  string   `json:"nome_evento" validate:"required"`
	Date       string   `json:"data" validate:"required"`
	Time       string   `json:"hora" validate:"required"`
	Location   string   `json:"local" validate:"required"`
	StudentIDs []string `json:"alunos_ids" validate:"required,min=1"`
}

func (ne *NewExam) Validate() error {
	ne.EventName = core.CleanString(ne.EventName)
	ne.Date = core.CleanString(ne.Date)
	ne.Time = core.CleanString(ne.Time)
	ne.Location = core.CleanString(ne.Location)
	return core.Validate.Struct(ne)
}

// UpdateExam defines what information may be provided to modify an
// existing exam. The roster is fixed at creation time.
type UpdateExam struct {
	EventName string `json:"nome_evento"`
	Date      string `json:"data"`
	Time      string `json:"hora"`
	Location  string `json:"local"`
}

func (ue *UpdateExam) Validate(origEx Exam) error {
	name := core.CleanString(ue.EventName)
	if name != "" {
		ue.EventName = name
	} else {
		ue.EventName = origEx.EventName
	}
	if ue.Date = core.CleanString(ue.Date); ue.Date == "" {
		ue.Date = origEx.Date
	}
	if ue.Time = core.CleanString(ue.Time); ue.Time == "" {
		ue.Time = origEx.Time
	}
	if ue.Location = core.CleanString(ue.Location); ue.Location == "" {
		ue.Location = origEx.Location
	}
	return core.Validate.Struct(ue)
}

// Score is a single component score as supplied by a client. The grading
// sheet sends blank inputs for unfilled cells, so JSON numbers, numeric
// strings and the empty string (= zero) are all accepted.
type Score float64

func (s *Score) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*s = 0
			return nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid score %q", raw)
		}
		*s = Score(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid score %s", strings.TrimSpace(string(data)))
	}
	*s = Score(f)
	return nil
}

// ScoreUpdate carries a partial set of component scores. Only the
// supplied components overwrite stored values; the rest are untouched.
type ScoreUpdate struct {
	Kihon  *Score      `json:"kihon"`
	Kata   *Score      `json:"kata"`
	Kumite *Score      `json:"kumite"`
	Gerais *Score      `json:"gerais"`
	Remark null.String `json:"observacao"`
}

func (su ScoreUpdate) Apply(s *Scores) {
	if su.Kihon != nil {
		s.Kihon = float64(*su.Kihon)
	}
	if su.Kata != nil {
		s.Kata = float64(*su.Kata)
	}
	if su.Kumite != nil {
		s.Kumite = float64(*su.Kumite)
	}
	if su.Gerais != nil {
		s.Gerais = float64(*su.Gerais)
	}
}

// ScoreResult is the outcome of a score update.
type ScoreResult struct {
	Average float64 `json:"media"`
	Passed  bool    `json:"aprovado"`
}
