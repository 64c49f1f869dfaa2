package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tbahati/dojokai/core"
	"github.com/tbahati/dojokai/core/class"
)

type classRepository struct {
	db *DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) *classRepository {
	return &classRepository{db: db}
}

func (repo *classRepository) withInstructorName(cls class.ClassGroup) class.ClassGroup {
	if ins, ok := repo.db.instructors[cls.InstructorID]; ok {
		cls.InstructorName = ins.Name
	}
	return cls
}

func (repo *classRepository) CreateClass(ctx context.Context, cls class.ClassGroup, exec ...core.DBExecutor) (class.ClassGroup, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	cls.ID = uuid.New().String()
	repo.db.classes[cls.ID] = &cls
	return repo.withInstructorName(cls), nil
}

func (repo *classRepository) QueryClasses(ctx context.Context, exec ...core.DBExecutor) ([]class.ClassGroup, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	classes := make([]class.ClassGroup, 0, len(repo.db.classes))
	for _, cls := range repo.db.classes {
		classes = append(classes, repo.withInstructorName(*cls))
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return classes, nil
}

func (repo *classRepository) GetClassByID(ctx context.Context, id string, exec ...core.DBExecutor) (class.ClassGroup, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cls, ok := repo.db.classes[id]; ok {
		return repo.withInstructorName(*cls), nil
	}
	return class.ClassGroup{}, class.ErrNotFound
}

func (repo *classRepository) UpdateClass(ctx context.Context, cls class.ClassGroup, exec ...core.DBExecutor) (class.ClassGroup, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	existing, ok := repo.db.classes[cls.ID]
	if !ok {
		return class.ClassGroup{}, class.ErrNotFound
	}
	if cls.Name != "" {
		existing.Name = cls.Name
	}
	if cls.Modality != "" {
		existing.Modality = cls.Modality
	}
	if len(cls.Weekdays) > 0 {
		existing.Weekdays = cls.Weekdays
	}
	if cls.StartTime != "" {
		existing.StartTime = cls.StartTime
	}
	if cls.EndTime != "" {
		existing.EndTime = cls.EndTime
	}
	if cls.InstructorID != "" {
		existing.InstructorID = cls.InstructorID
	}
	existing.UpdatedAt = time.Now().UTC()
	return repo.withInstructorName(*existing), nil
}

func (repo *classRepository) DeleteClassByID(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[id]; !ok {
		return class.ErrNotFound
	}
	delete(repo.db.classes, id)
	return nil
}
