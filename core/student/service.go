package student

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tbahati/dojokai/core"
)

var ErrNotFound = errors.New("student not found")

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		QueryStudents(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Student, error)
		// QueryStudentsByID returns the students whose IDs are in `ids`;
		// unknown IDs are simply absent from the result.
		QueryStudentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) ([]Student, error)
		GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Student, error)
		UpdateStudent(ctx context.Context, std Student, isActive *bool, exec ...core.DBExecutor) (Student, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	std := Student{
		Name:            ns.Name,
		BirthDate:       ns.BirthDate,
		Rank:            ns.Rank,
		NextPromotionAt: null.NewString(ns.NextPromotionAt, ns.NextPromotionAt != ""),
		LastPromotionAt: null.StringFrom(now.Format("2006-01-02")),
		UserID:          null.NewString(ns.UserID, ns.UserID != ""),
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if std.Rank == "" {
		std.Rank = DefaultRank
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	std := Student{
		ID:              id,
		Name:            us.Name,
		BirthDate:       us.BirthDate,
		Rank:            us.Rank,
		LastPromotionAt: null.NewString(us.LastPromotionAt, us.LastPromotionAt != ""),
		NextPromotionAt: null.NewString(us.NextPromotionAt, us.NextPromotionAt != ""),
		UpdatedAt:       time.Now().UTC(),
	}
	return svc.repo.UpdateStudent(ctx, std, us.IsActive)
}

// Deactivate flags the student inactive instead of deleting the row,
// so past exam scorecards keep their reference.
func (svc *Service) Deactivate(ctx context.Context, id string) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	inactive := false
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std, &inactive)
}
