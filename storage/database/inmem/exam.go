package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tbahati/dojokai/core"
	"github.com/tbahati/dojokai/core/exam"
)

type examRepository struct {
	db *DB
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *DB) *examRepository {
	return &examRepository{db: db}
}

func (repo *examRepository) enrollmentCount(examID string) int {
	var n int
	for _, enr := range repo.db.enrollments {
		if enr.ExamID == examID {
			n++
		}
	}
	return n
}

func (repo *examRepository) CreateExam(ctx context.Context, ex exam.Exam, exec ...core.DBExecutor) (exam.Exam, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ex.ID = uuid.New().String()
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now().UTC()
	}
	repo.db.exams[ex.ID] = &ex
	return ex, nil
}

func (repo *examRepository) QueryExams(ctx context.Context, exec ...core.DBExecutor) ([]exam.Exam, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	exams := make([]exam.Exam, 0, len(repo.db.exams))
	for _, ex := range repo.db.exams {
		e := *ex
		e.EnrollmentCount = repo.enrollmentCount(e.ID)
		exams = append(exams, e)
	}
	sort.Slice(exams, func(i, j int) bool { return exams[i].CreatedAt.After(exams[j].CreatedAt) })
	return exams, nil
}

func (repo *examRepository) GetExamByID(ctx context.Context, id string, exec ...core.DBExecutor) (exam.Exam, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ex, ok := repo.db.exams[id]; ok {
		e := *ex
		e.EnrollmentCount = repo.enrollmentCount(e.ID)
		return e, nil
	}
	return exam.Exam{}, exam.ErrNotFound
}

func (repo *examRepository) UpdateExam(ctx context.Context, ex exam.Exam, exec ...core.DBExecutor) (exam.Exam, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	existing, ok := repo.db.exams[ex.ID]
	if !ok {
		return exam.Exam{}, exam.ErrNotFound
	}
	if ex.EventName != "" {
		existing.EventName = ex.EventName
	}
	if ex.Date != "" {
		existing.Date = ex.Date
	}
	if ex.Time != "" {
		existing.Time = ex.Time
	}
	if ex.Location != "" {
		existing.Location = ex.Location
	}
	e := *existing
	e.EnrollmentCount = repo.enrollmentCount(e.ID)
	return e, nil
}

func (repo *examRepository) DeleteExamByID(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.exams[id]; !ok {
		return exam.ErrNotFound
	}
	delete(repo.db.exams, id)
	// cascade, same as the FK constraint
	for enrID, enr := range repo.db.enrollments {
		if enr.ExamID == id {
			delete(repo.db.enrollments, enrID)
		}
	}
	return nil
}

func (repo *examRepository) CreateEnrollments(ctx context.Context, enrls []exam.Enrollment, exec ...core.DBExecutor) ([]exam.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	created := make([]exam.Enrollment, 0, len(enrls))
	for _, enr := range enrls {
		enr.ID = uuid.New().String()
		enrCopy := enr
		repo.db.enrollments[enr.ID] = &enrCopy
		created = append(created, enr)
	}
	return created, nil
}

func (repo *examRepository) QueryEnrollmentsByExam(ctx context.Context, examID string, exec ...core.DBExecutor) ([]exam.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enrollments := make([]exam.Enrollment, 0)
	for _, enr := range repo.db.enrollments {
		if enr.ExamID == examID {
			enrollments = append(enrollments, *enr)
		}
	}
	sort.SliceStable(enrollments, func(i, j int) bool {
		if enrollments[i].Average != enrollments[j].Average {
			return enrollments[i].Average > enrollments[j].Average
		}
		return enrollments[i].StudentName < enrollments[j].StudentName
	})
	return enrollments, nil
}

func (repo *examRepository) GetEnrollmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (exam.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if enr, ok := repo.db.enrollments[id]; ok {
		return *enr, nil
	}
	return exam.Enrollment{}, exam.ErrEnrollmentNotFound
}

func (repo *examRepository) UpdateEnrollmentScores(ctx context.Context, enr exam.Enrollment, exec ...core.DBExecutor) (exam.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	existing, ok := repo.db.enrollments[enr.ID]
	if !ok {
		return exam.Enrollment{}, exam.ErrEnrollmentNotFound
	}
	existing.Scores = enr.Scores
	existing.Average = enr.Average
	existing.Passed = enr.Passed
	existing.Remark = enr.Remark
	return *existing, nil
}
