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
	"github.com/tbahati/dojokai/core/class"
)

type dbClass struct {
	ID             string         `db:"id"`
	Name           string         `db:"nome_turma"`
	Modality       string         `db:"modalidade"`
	Weekdays       pq.StringArray `db:"dias_semana"`
	StartTime      string         `db:"horario_inicio"`
	EndTime        string         `db:"horario_fim"`
	InstructorID   string         `db:"fk_professor"`
	InstructorName null.String    `db:"professor_nome"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (c dbClass) toCore() class.ClassGroup {
	return class.ClassGroup{
		ID:             c.ID,
		Name:           c.Name,
		Modality:       c.Modality,
		Weekdays:       c.Weekdays,
		StartTime:      c.StartTime,
		EndTime:        c.EndTime,
		InstructorID:   c.InstructorID,
		InstructorName: c.InstructorName.String,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// listings join the owning instructor so responses can show their name
// without a second round trip.
const classColumns = `
	a.id, a.nome_turma, a.modalidade, a.dias_semana, a.horario_inicio, a.horario_fim,
	a.fk_professor, p.nome AS professor_nome, a.created_at, a.updated_at`

type classRepository struct {
	exec core.DBExecutor
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

var classOrdering = core.DBOrdering{Field: "a.nome_turma", Ascending: true}

func NewClassRepository(exec core.DBExecutor) *classRepository {
	return &classRepository{exec: exec}
}

func (repo classRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo classRepository) scanAll(rows *sql.Rows) ([]class.ClassGroup, error) {
	defer func() { _ = rows.Close() }()
	var dbClasses []dbClass
	if err := sqlx.StructScan(rows, &dbClasses); err != nil {
		return nil, err
	}
	classes := make([]class.ClassGroup, 0, len(dbClasses))
	for _, c := range dbClasses {
		classes = append(classes, c.toCore())
	}
	return classes, nil
}

func (repo classRepository) CreateClass(ctx context.Context, cls class.ClassGroup, exec ...core.DBExecutor) (class.ClassGroup, error) {
	cls.ID = uuid.New().String()
	q := `
		INSERT INTO aulas (id, nome_turma, modalidade, dias_semana, horario_inicio, horario_fim,
		                   fk_professor, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.getExec(exec).ExecContext(
		ctx, q,
		cls.ID, cls.Name, cls.Modality, pq.Array(cls.Weekdays), cls.StartTime, cls.EndTime,
		cls.InstructorID, cls.CreatedAt, cls.UpdatedAt,
	)
	if err != nil {
		return class.ClassGroup{}, errors.Wrap(err, "inserting class")
	}
	return cls, nil
}

func (repo classRepository) QueryClasses(ctx context.Context, exec ...core.DBExecutor) ([]class.ClassGroup, error) {
	q := `
		SELECT ` + classColumns + `
		FROM aulas a
		JOIN professores p ON p.id = a.fk_professor
		ORDER BY ` + classOrdering.String()
	rows, err := repo.getExec(exec).QueryContext(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes, err := repo.scanAll(rows)
	if err != nil {
		return nil, errors.Wrap(err, "scanning classes")
	}
	return classes, nil
}

func (repo classRepository) GetClassByID(ctx context.Context, id string, exec ...core.DBExecutor) (class.ClassGroup, error) {
	if !validID(id) {
		return class.ClassGroup{}, class.ErrNotFound
	}
	q := `
		SELECT ` + classColumns + `
		FROM aulas a
		JOIN professores p ON p.id = a.fk_professor
		WHERE a.id = $1`
	rows, err := repo.getExec(exec).QueryContext(ctx, q, id)
	if err != nil {
		return class.ClassGroup{}, errors.Wrap(err, "getting class")
	}
	classes, err := repo.scanAll(rows)
	if err != nil {
		return class.ClassGroup{}, errors.Wrap(err, "scanning class")
	}
	if len(classes) == 0 {
		return class.ClassGroup{}, class.ErrNotFound
	}
	return classes[0], nil
}

func (repo classRepository) UpdateClass(ctx context.Context, cls class.ClassGroup, exec ...core.DBExecutor) (class.ClassGroup, error) {
	if !validID(cls.ID) {
		return class.ClassGroup{}, class.ErrNotFound
	}
	q := `
		UPDATE aulas
		SET nome_turma     = COALESCE(NULLIF($2, ''), nome_turma),
		    modalidade     = COALESCE(NULLIF($3, ''), modalidade),
		    dias_semana    = COALESCE($4, dias_semana),
		    horario_inicio = COALESCE(NULLIF($5, ''), horario_inicio),
		    horario_fim    = COALESCE(NULLIF($6, ''), horario_fim),
		    fk_professor   = COALESCE(NULLIF($7, '')::uuid, fk_professor),
		    updated_at     = $8
		WHERE id = $1`
	var days interface{}
	if len(cls.Weekdays) > 0 {
		days = pq.Array(cls.Weekdays)
	}
	res, err := repo.getExec(exec).ExecContext(
		ctx, q,
		cls.ID, cls.Name, cls.Modality, days, cls.StartTime, cls.EndTime,
		cls.InstructorID, time.Now().UTC(),
	)
	if err != nil {
		return class.ClassGroup{}, errors.Wrap(err, "updating class")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return class.ClassGroup{}, class.ErrNotFound
	}
	return repo.GetClassByID(ctx, cls.ID, exec...)
}

func (repo classRepository) DeleteClassByID(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if !validID(id) {
		return class.ErrNotFound
	}
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM aulas WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return class.ErrNotFound
	}
	return nil
}
