package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tbahati/dojokai/core"
	"github.com/tbahati/dojokai/core/student"
)

type dbStudent struct {
	ID              string      `db:"id"`
	Name            string      `db:"nome"`
	BirthDate       string      `db:"data_nascimento"`
	Rank            string      `db:"grau_atual"`
	LastPromotionAt null.String `db:"ultima_graduacao"`
	NextPromotionAt null.String `db:"proxima_graduacao"`
	IsActive        bool        `db:"ativo"`
	UserID          null.String `db:"fk_usuario"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

func (s dbStudent) toCore() student.Student {
	return student.Student{
		ID:              s.ID,
		Name:            s.Name,
		BirthDate:       s.BirthDate,
		Rank:            s.Rank,
		LastPromotionAt: s.LastPromotionAt,
		NextPromotionAt: s.NextPromotionAt,
		IsActive:        s.IsActive,
		UserID:          s.UserID,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// date columns are cast to text so they scan straight into the
// YYYY-MM-DD strings the domain model carries.
const studentColumns = `
	id, nome, data_nascimento::text, grau_atual,
	ultima_graduacao::text AS ultima_graduacao, proxima_graduacao::text AS proxima_graduacao,
	ativo, fk_usuario, created_at, updated_at`

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

var studentOrdering = core.DBOrdering{Field: "nome", Ascending: true}

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

func (repo studentRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo studentRepository) scanAll(rows *sql.Rows) ([]student.Student, error) {
	defer func() { _ = rows.Close() }()
	var dbStudents []dbStudent
	if err := sqlx.StructScan(rows, &dbStudents); err != nil {
		return nil, err
	}
	students := make([]student.Student, 0, len(dbStudents))
	for _, s := range dbStudents {
		students = append(students, s.toCore())
	}
	return students, nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	std.ID = uuid.New().String()
	q := `
		INSERT INTO alunos (id, nome, data_nascimento, grau_atual, ultima_graduacao, proxima_graduacao,
		                    ativo, fk_usuario, created_at, updated_at)
		VALUES ($1, $2, $3::date, $4, $5::date, $6::date, $7, $8, $9, $10)`
	_, err := repo.getExec(exec).ExecContext(
		ctx, q,
		std.ID, std.Name, std.BirthDate, std.Rank, std.LastPromotionAt, std.NextPromotionAt,
		std.IsActive, std.UserID, std.CreatedAt, std.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, exec ...core.DBExecutor) ([]student.Student, error) {
	q := `SELECT ` + studentColumns + ` FROM alunos WHERE 1=1`
	var args []interface{}
	if filter == nil || !filter.IncludeInactive {
		q += ` AND ativo`
	}
	if filter != nil && filter.Rank != "" {
		args = append(args, filter.Rank)
		q += ` AND grau_atual = $1`
	}
	q += ` ORDER BY ` + studentOrdering.String()

	rows, err := repo.getExec(exec).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students, err := repo.scanAll(rows)
	if err != nil {
		return nil, errors.Wrap(err, "scanning students")
	}
	return students, nil
}

func (repo studentRepository) QueryStudentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) ([]student.Student, error) {
	// malformed ids cannot match anyone; keep them out of the uuid comparison
	if ids = validIDs(ids); len(ids) == 0 {
		return []student.Student{}, nil
	}
	q := `SELECT ` + studentColumns + ` FROM alunos WHERE id = ANY($1)`
	rows, err := repo.getExec(exec).QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "querying students by id")
	}
	students, err := repo.scanAll(rows)
	if err != nil {
		return nil, errors.Wrap(err, "scanning students")
	}
	return students, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	if !validID(id) {
		return student.Student{}, student.ErrNotFound
	}
	q := `SELECT ` + studentColumns + ` FROM alunos WHERE id = $1`
	rows, err := repo.getExec(exec).QueryContext(ctx, q, id)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	students, err := repo.scanAll(rows)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "scanning student")
	}
	if len(students) == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return students[0], nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student, isActive *bool, exec ...core.DBExecutor) (student.Student, error) {
	if !validID(std.ID) {
		return student.Student{}, student.ErrNotFound
	}
	q := `
		UPDATE alunos
		SET nome              = COALESCE(NULLIF($2, ''), nome),
		    data_nascimento   = COALESCE(NULLIF($3, '')::date, data_nascimento),
		    grau_atual        = COALESCE(NULLIF($4, ''), grau_atual),
		    ultima_graduacao  = COALESCE($5::date, ultima_graduacao),
		    proxima_graduacao = COALESCE($6::date, proxima_graduacao),
		    ativo             = COALESCE($7, ativo),
		    updated_at        = $8
		WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(
		ctx, q,
		std.ID, std.Name, std.BirthDate, std.Rank, std.LastPromotionAt, std.NextPromotionAt,
		isActive, time.Now().UTC(),
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudentByID(ctx, std.ID, exec...)
}
