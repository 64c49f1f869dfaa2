package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tbahati/dojokai/core"
	"github.com/tbahati/dojokai/core/instructor"
)

type instructorRepository struct {
	db *DB
}

var _ instructor.Repository = (*instructorRepository)(nil) // interface compliance check

func NewInstructorRepository(db *DB) *instructorRepository {
	return &instructorRepository{db: db}
}

func (repo *instructorRepository) CheckCPFUniqueness(ctx context.Context, cpf string, excluded []instructor.Instructor, exec ...core.DBExecutor) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excludedIDs := make(map[string]struct{}, len(excluded))
	for _, ins := range excluded {
		excludedIDs[ins.ID] = struct{}{}
	}
	for _, ins := range repo.db.instructors {
		if _, ok := excludedIDs[ins.ID]; ok {
			continue
		}
		if ins.CPF == cpf {
			return instructor.ErrCPFExists
		}
	}
	return nil
}

func (repo *instructorRepository) CreateInstructor(ctx context.Context, ins instructor.Instructor, exec ...core.DBExecutor) (instructor.Instructor, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ins.ID = uuid.New().String()
	repo.db.instructors[ins.ID] = &ins
	return ins, nil
}

func (repo *instructorRepository) QueryInstructors(ctx context.Context, includeInactive bool, exec ...core.DBExecutor) ([]instructor.Instructor, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var instructors []instructor.Instructor
	for _, ins := range repo.db.instructors {
		if !ins.IsActive && !includeInactive {
			continue
		}
		instructors = append(instructors, *ins)
	}
	sort.Slice(instructors, func(i, j int) bool { return instructors[i].Name < instructors[j].Name })
	return instructors, nil
}

func (repo *instructorRepository) GetInstructorByID(ctx context.Context, id string, exec ...core.DBExecutor) (instructor.Instructor, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ins, ok := repo.db.instructors[id]; ok {
		return *ins, nil
	}
	return instructor.Instructor{}, instructor.ErrNotFound
}

func (repo *instructorRepository) UpdateInstructor(ctx context.Context, ins instructor.Instructor, isActive *bool, exec ...core.DBExecutor) (instructor.Instructor, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	existing, ok := repo.db.instructors[ins.ID]
	if !ok {
		return instructor.Instructor{}, instructor.ErrNotFound
	}
	if ins.Name != "" {
		existing.Name = ins.Name
	}
	if ins.CPF != "" {
		existing.CPF = ins.CPF
	}
	if ins.BirthDate != "" {
		existing.BirthDate = ins.BirthDate
	}
	if ins.Phone.Valid {
		existing.Phone = ins.Phone
	}
	if ins.Address.Valid {
		existing.Address = ins.Address
	}
	if ins.Rank.Valid {
		existing.Rank = ins.Rank
	}
	if ins.HiredAt != "" {
		existing.HiredAt = ins.HiredAt
	}
	if isActive != nil {
		existing.IsActive = *isActive
	}
	existing.UpdatedAt = time.Now().UTC()
	return *existing, nil
}
