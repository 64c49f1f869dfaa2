package class

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/tbahati/dojokai/core"
	"github.com/tbahati/dojokai/core/instructor"
)

var ErrNotFound = errors.New("class not found")

type (
	Repository interface {
		CreateClass(ctx context.Context, cls ClassGroup, exec ...core.DBExecutor) (ClassGroup, error)
		QueryClasses(ctx context.Context, exec ...core.DBExecutor) ([]ClassGroup, error)
		GetClassByID(ctx context.Context, id string, exec ...core.DBExecutor) (ClassGroup, error)
		UpdateClass(ctx context.Context, cls ClassGroup, exec ...core.DBExecutor) (ClassGroup, error)
		DeleteClassByID(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	// InstructorDirectory is the slice of the instructor repository this
	// service needs: an existence check on the owning instructor.
	InstructorDirectory interface {
		GetInstructorByID(ctx context.Context, id string, exec ...core.DBExecutor) (instructor.Instructor, error)
	}

	Service struct {
		repo        Repository
		instructors InstructorDirectory
	}
)

func NewService(repo Repository, instructors InstructorDirectory) *Service {
	return &Service{repo: repo, instructors: instructors}
}

func (svc *Service) checkInstructor(ctx context.Context, id string) error {
	if _, err := svc.instructors.GetInstructorByID(ctx, id); err != nil {
		if errors.Cause(err) == instructor.ErrNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "fk_professor", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nc NewClassGroup) (ClassGroup, error) {
	if err := svc.checkInstructor(ctx, nc.InstructorID); err != nil {
		return ClassGroup{}, err
	}

	now := time.Now().UTC()
	cls := ClassGroup{
		Name:         nc.Name,
		Modality:     nc.Modality,
		Weekdays:     nc.Weekdays,
		StartTime:    nc.StartTime,
		EndTime:      nc.EndTime,
		InstructorID: nc.InstructorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if cls.Modality == "" {
		cls.Modality = DefaultModality
	}
	return svc.repo.CreateClass(ctx, cls)
}

func (svc *Service) QueryAll(ctx context.Context) ([]ClassGroup, error) {
	return svc.repo.QueryClasses(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (ClassGroup, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateClassGroup) (ClassGroup, error) {
	if err := svc.checkInstructor(ctx, uc.InstructorID); err != nil {
		return ClassGroup{}, err
	}

	cls := ClassGroup{
		ID:           id,
		Name:         uc.Name,
		Modality:     uc.Modality,
		Weekdays:     uc.Weekdays,
		StartTime:    uc.StartTime,
		EndTime:      uc.EndTime,
		InstructorID: uc.InstructorID,
		UpdatedAt:    time.Now().UTC(),
	}
	return svc.repo.UpdateClass(ctx, cls)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteClassByID(ctx, id)
}
