package exam

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/tbahati/dojokai/core"
	"github.com/tbahati/dojokai/core/student"
)

var (
	// errors
	ErrNotFound           = errors.New("exam not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

type (
	Repository interface {
		CreateExam(ctx context.Context, ex Exam, exec ...core.DBExecutor) (Exam, error)
		// QueryExams returns all exams, most recently created first,
		// each carrying its enrollment count.
		QueryExams(ctx context.Context, exec ...core.DBExecutor) ([]Exam, error)
		GetExamByID(ctx context.Context, id string, exec ...core.DBExecutor) (Exam, error)
		UpdateExam(ctx context.Context, ex Exam, exec ...core.DBExecutor) (Exam, error)
		// DeleteExamByID removes the exam; its enrollments go with it
		// (ON DELETE CASCADE).
		DeleteExamByID(ctx context.Context, id string, exec ...core.DBExecutor) error
		CreateEnrollments(ctx context.Context, enrls []Enrollment, exec ...core.DBExecutor) ([]Enrollment, error)
		// QueryEnrollmentsByExam returns the exam's scorecards ordered by
		// average descending, student name ascending on ties.
		QueryEnrollmentsByExam(ctx context.Context, examID string, exec ...core.DBExecutor) ([]Enrollment, error)
		GetEnrollmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Enrollment, error)
		UpdateEnrollmentScores(ctx context.Context, enr Enrollment, exec ...core.DBExecutor) (Enrollment, error)
	}

	// StudentDirectory is the slice of the student repository this service
	// needs: resolving a roster of candidate IDs to existing students.
	StudentDirectory interface {
		QueryStudentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) ([]student.Student, error)
	}

	Service struct {
		db       core.TxBeginner
		repo     Repository
		students StudentDirectory
	}
)

func NewService(db core.TxBeginner, repo Repository, students StudentDirectory) *Service {
	return &Service{db: db, repo: repo, students: students}
}

// Create schedules a new exam and enrolls the roster in one transaction.
// Roster IDs that do not match an existing student are skipped and
// reported back to the caller instead of failing the whole request.
func (svc *Service) Create(ctx context.Context, ne NewExam) (Exam, []string, error) {
	studs, err := svc.students.QueryStudentsByID(ctx, ne.StudentIDs)
	if err != nil {
		return Exam{}, nil, errors.Wrap(err, "resolving roster")
	}
	known := make(map[string]student.Student, len(studs))
	for _, std := range studs {
		known[std.ID] = std
	}

	var skipped []string
	for _, id := range ne.StudentIDs {
		if _, ok := known[id]; !ok {
			skipped = append(skipped, id)
		}
	}

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return Exam{}, nil, errors.Wrap(err, "beginning transaction")
	}

	ex := Exam{
		EventName: ne.EventName,
		Date:      ne.Date,
		Time:      ne.Time,
		Location:  ne.Location,
		CreatedAt: time.Now().UTC(),
	}
	ex, err = svc.repo.CreateExam(ctx, ex, tx)
	if err != nil {
		_ = tx.Rollback()
		return Exam{}, nil, err
	}

	enrls := make([]Enrollment, 0, len(ne.StudentIDs))
	for _, id := range ne.StudentIDs {
		std, ok := known[id]
		if !ok {
			continue
		}
		// name and rank are snapshotted at enrollment time; scores start
		// zeroed and media/aprovado follow from them
		enrl := Enrollment{
			ExamID:      ex.ID,
			StudentID:   id,
			StudentName: std.Name,
			StudentRank: std.Rank,
		}
		enrl.Grade()
		enrls = append(enrls, enrl)
	}
	created, err := svc.repo.CreateEnrollments(ctx, enrls, tx)
	if err != nil {
		_ = tx.Rollback()
		return Exam{}, nil, err
	}

	if err := tx.Commit(); err != nil {
		return Exam{}, nil, errors.Wrap(err, "committing transaction")
	}
	ex.EnrollmentCount = len(created)
	return ex, skipped, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Exam, error) {
	return svc.repo.QueryExams(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Exam, error) {
	return svc.repo.GetExamByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ue UpdateExam) (Exam, error) {
	ex, err := svc.repo.GetExamByID(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	ex.EventName = ue.EventName
	ex.Date = ue.Date
	ex.Time = ue.Time
	ex.Location = ue.Location
	return svc.repo.UpdateExam(ctx, ex)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteExamByID(ctx, id)
}

// Ranking returns the exam's scorecards ordered best average first.
// An unknown exam ID yields an empty list, not an error.
func (svc *Service) Ranking(ctx context.Context, examID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollmentsByExam(ctx, examID)
}

// UpdateScores applies a partial score update to one scorecard and
// recomputes media/aprovado, even when the supplied values match the
// stored ones.
func (svc *Service) UpdateScores(ctx context.Context, enrollmentID string, su ScoreUpdate) (Enrollment, error) {
	enrl, err := svc.repo.GetEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return Enrollment{}, err
	}
	su.Apply(&enrl.Scores)
	if su.Remark.Valid {
		enrl.Remark = su.Remark
	}
	enrl.Grade()
	return svc.repo.UpdateEnrollmentScores(ctx, enrl)
}
