package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tbahati/dojokai/core"
	"github.com/tbahati/dojokai/core/instructor"
)

type dbInstructor struct {
	ID        string      `db:"id"`
	Name      string      `db:"nome"`
	CPF       string      `db:"cpf"`
	BirthDate string      `db:"data_nascimento"`
	Phone     null.String `db:"telefone"`
	Address   null.String `db:"endereco"`
	Rank      null.String `db:"grau"`
	HiredAt   null.String `db:"data_contratacao"`
	IsActive  bool        `db:"ativo"`
	UserID    null.String `db:"fk_usuario"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (i dbInstructor) toCore() instructor.Instructor {
	return instructor.Instructor{
		ID:        i.ID,
		Name:      i.Name,
		CPF:       i.CPF,
		BirthDate: i.BirthDate,
		Phone:     i.Phone,
		Address:   i.Address,
		Rank:      i.Rank,
		HiredAt:   i.HiredAt.String,
		IsActive:  i.IsActive,
		UserID:    i.UserID.String,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

const instructorColumns = `
	id, nome, cpf, data_nascimento::text, telefone, endereco, grau,
	data_contratacao::text AS data_contratacao, ativo, fk_usuario, created_at, updated_at`

type instructorRepository struct {
	exec core.DBExecutor
}

var _ instructor.Repository = (*instructorRepository)(nil) // interface compliance check

var instructorOrdering = core.DBOrdering{Field: "nome", Ascending: true}

func NewInstructorRepository(exec core.DBExecutor) *instructorRepository {
	return &instructorRepository{exec: exec}
}

func (repo instructorRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo instructorRepository) scanAll(rows *sql.Rows) ([]instructor.Instructor, error) {
	defer func() { _ = rows.Close() }()
	var dbInstructors []dbInstructor
	if err := sqlx.StructScan(rows, &dbInstructors); err != nil {
		return nil, err
	}
	instructors := make([]instructor.Instructor, 0, len(dbInstructors))
	for _, i := range dbInstructors {
		instructors = append(instructors, i.toCore())
	}
	return instructors, nil
}

func (repo instructorRepository) CheckCPFUniqueness(ctx context.Context, cpf string, excluded []instructor.Instructor, exec ...core.DBExecutor) error {
	q := `SELECT EXISTS (SELECT 1 FROM professores WHERE cpf = $1`
	args := []interface{}{cpf}
	if len(excluded) > 0 {
		q += ` AND id != $2`
		args = append(args, excluded[0].ID)
	}
	q += `)`

	var exists bool
	if err := repo.getExec(exec).QueryRowContext(ctx, q, args...).Scan(&exists); err != nil {
		return errors.Wrap(err, "checking CPF uniqueness")
	}
	if exists {
		return instructor.ErrCPFExists
	}
	return nil
}

func (repo instructorRepository) CreateInstructor(ctx context.Context, ins instructor.Instructor, exec ...core.DBExecutor) (instructor.Instructor, error) {
	ins.ID = uuid.New().String()
	q := `
		INSERT INTO professores (id, nome, cpf, data_nascimento, telefone, endereco, grau,
		                         data_contratacao, ativo, fk_usuario, created_at, updated_at)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8::date, $9, $10, $11, $12)`
	_, err := repo.getExec(exec).ExecContext(
		ctx, q,
		ins.ID, ins.Name, ins.CPF, ins.BirthDate, ins.Phone, ins.Address, ins.Rank,
		null.NewString(ins.HiredAt, ins.HiredAt != ""), ins.IsActive,
		null.NewString(ins.UserID, ins.UserID != ""), ins.CreatedAt, ins.UpdatedAt,
	)
	if err != nil {
		return instructor.Instructor{}, errors.Wrap(err, "inserting instructor")
	}
	return ins, nil
}

func (repo instructorRepository) QueryInstructors(ctx context.Context, includeInactive bool, exec ...core.DBExecutor) ([]instructor.Instructor, error) {
	q := `SELECT ` + instructorColumns + ` FROM professores`
	if !includeInactive {
		q += ` WHERE ativo`
	}
	q += ` ORDER BY ` + instructorOrdering.String()

	rows, err := repo.getExec(exec).QueryContext(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "querying instructors")
	}
	instructors, err := repo.scanAll(rows)
	if err != nil {
		return nil, errors.Wrap(err, "scanning instructors")
	}
	return instructors, nil
}

func (repo instructorRepository) GetInstructorByID(ctx context.Context, id string, exec ...core.DBExecutor) (instructor.Instructor, error) {
	if !validID(id) {
		return instructor.Instructor{}, instructor.ErrNotFound
	}
	q := `SELECT ` + instructorColumns + ` FROM professores WHERE id = $1`
	rows, err := repo.getExec(exec).QueryContext(ctx, q, id)
	if err != nil {
		return instructor.Instructor{}, errors.Wrap(err, "getting instructor")
	}
	instructors, err := repo.scanAll(rows)
	if err != nil {
		return instructor.Instructor{}, errors.Wrap(err, "scanning instructor")
	}
	if len(instructors) == 0 {
		return instructor.Instructor{}, instructor.ErrNotFound
	}
	return instructors[0], nil
}

func (repo instructorRepository) UpdateInstructor(ctx context.Context, ins instructor.Instructor, isActive *bool, exec ...core.DBExecutor) (instructor.Instructor, error) {
	if !validID(ins.ID) {
		return instructor.Instructor{}, instructor.ErrNotFound
	}
	q := `
		UPDATE professores
		SET nome             = COALESCE(NULLIF($2, ''), nome),
		    cpf              = COALESCE(NULLIF($3, ''), cpf),
		    data_nascimento  = COALESCE(NULLIF($4, '')::date, data_nascimento),
		    telefone         = COALESCE($5, telefone),
		    endereco         = COALESCE($6, endereco),
		    grau             = COALESCE($7, grau),
		    data_contratacao = COALESCE(NULLIF($8, '')::date, data_contratacao),
		    ativo            = COALESCE($9, ativo),
		    updated_at       = $10
		WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(
		ctx, q,
		ins.ID, ins.Name, ins.CPF, ins.BirthDate, ins.Phone, ins.Address, ins.Rank,
		ins.HiredAt, isActive, time.Now().UTC(),
	)
	if err != nil {
		return instructor.Instructor{}, errors.Wrap(err, "updating instructor")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return instructor.Instructor{}, instructor.ErrNotFound
	}
	return repo.GetInstructorByID(ctx, ins.ID, exec...)
}
