package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tbahati/dojokai/core"
	"github.com/tbahati/dojokai/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		students = append(students, *s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	std.ID = uuid.New().String()
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, exec ...core.DBExecutor) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var students []student.Student
	for _, std := range repo.query() {
		if !std.IsActive && (filter == nil || !filter.IncludeInactive) {
			continue
		}
		if filter != nil && filter.Rank != "" && std.Rank != filter.Rank {
			continue
		}
		students = append(students, std)
	}
	return students, nil
}

func (repo *studentRepository) QueryStudentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var students []student.Student
	for _, id := range ids {
		if std, ok := repo.db.students[id]; ok {
			students = append(students, *std)
		}
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student, isActive *bool, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	existing, ok := repo.db.students[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if std.Name != "" {
		existing.Name = std.Name
	}
	if std.BirthDate != "" {
		existing.BirthDate = std.BirthDate
	}
	if std.Rank != "" {
		existing.Rank = std.Rank
	}
	if std.LastPromotionAt.Valid {
		existing.LastPromotionAt = std.LastPromotionAt
	}
	if std.NextPromotionAt.Valid {
		existing.NextPromotionAt = std.NextPromotionAt
	}
	if isActive != nil {
		existing.IsActive = *isActive
	}
	existing.UpdatedAt = time.Now().UTC()
	return *existing, nil
}
