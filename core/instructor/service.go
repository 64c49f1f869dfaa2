package instructor

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tbahati/dojokai/core"
	"github.com/tbahati/dojokai/core/user"
)

var (
	ErrNotFound  = errors.New("instructor not found")
	ErrCPFExists = errors.New("an instructor with this CPF already exists")
)

type (
	Repository interface {
		CheckCPFUniqueness(ctx context.Context, cpf string, excluded []Instructor, exec ...core.DBExecutor) error
		CreateInstructor(ctx context.Context, ins Instructor, exec ...core.DBExecutor) (Instructor, error)
		QueryInstructors(ctx context.Context, includeInactive bool, exec ...core.DBExecutor) ([]Instructor, error)
		GetInstructorByID(ctx context.Context, id string, exec ...core.DBExecutor) (Instructor, error)
		UpdateInstructor(ctx context.Context, ins Instructor, isActive *bool, exec ...core.DBExecutor) (Instructor, error)
	}

	Service struct {
		db     core.TxBeginner
		repo   Repository
		usrSvc *user.Service
	}
)

func NewService(db core.TxBeginner, repo Repository, usrSvc *user.Service) *Service {
	return &Service{db: db, repo: repo, usrSvc: usrSvc}
}

func (svc *Service) CheckUniqueness(ctx context.Context, cpf string, excluded ...Instructor) error {
	if err := svc.repo.CheckCPFUniqueness(ctx, cpf, excluded); err != nil {
		if errors.Cause(err) == ErrCPFExists {
			return core.NewValidationError(err, core.FieldError{Field: "cpf", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Create saves a new Instructor together with their login account.
// Both rows are written in a single transaction.
func (svc *Service) Create(ctx context.Context, ni NewInstructor) (Instructor, error) {
	if err := svc.usrSvc.CheckUniqueness(ctx, ni.Email); err != nil {
		return Instructor{}, err
	}
	if err := svc.CheckUniqueness(ctx, ni.CPF); err != nil {
		return Instructor{}, err
	}

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return Instructor{}, errors.Wrap(err, "beginning transaction")
	}

	usr, err := svc.usrSvc.Create(ctx, user.NewUser{
		Name:        ni.Name,
		Email:       ni.Email,
		Password:    ni.Password,
		AccessLevel: user.AccessInstructor,
	}, tx)
	if err != nil {
		_ = tx.Rollback()
		return Instructor{}, err
	}

	now := time.Now().UTC()
	ins := Instructor{
		Name:      ni.Name,
		CPF:       ni.CPF,
		BirthDate: ni.BirthDate,
		Phone:     null.NewString(ni.Phone, ni.Phone != ""),
		Address:   null.NewString(ni.Address, ni.Address != ""),
		Rank:      null.NewString(ni.Rank, ni.Rank != ""),
		HiredAt:   now.Format("2006-01-02"),
		IsActive:  true,
		UserID:    usr.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ins, err = svc.repo.CreateInstructor(ctx, ins, tx)
	if err != nil {
		_ = tx.Rollback()
		return Instructor{}, err
	}

	if err := tx.Commit(); err != nil {
		return Instructor{}, errors.Wrap(err, "committing transaction")
	}
	return ins, nil
}

func (svc *Service) Query(ctx context.Context, includeInactive bool) ([]Instructor, error) {
	return svc.repo.QueryInstructors(ctx, includeInactive)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Instructor, error) {
	return svc.repo.GetInstructorByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ui UpdateInstructor) (Instructor, error) {
	orig, err := svc.repo.GetInstructorByID(ctx, id)
	if err != nil {
		return Instructor{}, err
	}
	if ui.CPF != orig.CPF {
		if err := svc.CheckUniqueness(ctx, ui.CPF, orig); err != nil {
			return Instructor{}, err
		}
	}

	ins := Instructor{
		ID:        id,
		Name:      ui.Name,
		CPF:       ui.CPF,
		BirthDate: ui.BirthDate,
		Phone:     null.NewString(ui.Phone, ui.Phone != ""),
		Address:   null.NewString(ui.Address, ui.Address != ""),
		Rank:      null.NewString(ui.Rank, ui.Rank != ""),
		HiredAt:   orig.HiredAt,
		UserID:    orig.UserID,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateInstructor(ctx, ins, ui.IsActive)
}

// Deactivate flags the instructor and their login account inactive.
func (svc *Service) Deactivate(ctx context.Context, id string) (Instructor, error) {
	ins, err := svc.repo.GetInstructorByID(ctx, id)
	if err != nil {
		return Instructor{}, err
	}

	inactive := false
	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return Instructor{}, errors.Wrap(err, "beginning transaction")
	}

	ins.UpdatedAt = time.Now().UTC()
	ins, err = svc.repo.UpdateInstructor(ctx, ins, &inactive, tx)
	if err != nil {
		_ = tx.Rollback()
		return Instructor{}, err
	}
	if usr, err := svc.usrSvc.Repo().GetUser(ctx, user.GetFilter{ID: ins.UserID}, tx); err == nil {
		usr.UpdatedAt = time.Now().UTC()
		if _, err := svc.usrSvc.Repo().UpdateUser(ctx, usr, &inactive, tx); err != nil {
			_ = tx.Rollback()
			return Instructor{}, err
		}
	} else if errors.Cause(err) != user.ErrNotFound {
		_ = tx.Rollback()
		return Instructor{}, err
	}

	if err := tx.Commit(); err != nil {
		return Instructor{}, errors.Wrap(err, "committing transaction")
	}
	return ins, nil
}
