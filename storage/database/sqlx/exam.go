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
	"github.com/tbahati/dojokai/core/exam"
)

type dbExam struct {
	ID              string    `db:"id"`
	EventName       string    `db:"nome_evento"`
	Date            string    `db:"data"`
	Time            string    `db:"hora"`
	Location        string    `db:"local"`
	EnrollmentCount int       `db:"total_inscricoes"`
	CreatedAt       time.Time `db:"created_at"`
}

func (e dbExam) toCore() exam.Exam {
	return exam.Exam{
		ID:              e.ID,
		EventName:       e.EventName,
		Date:            e.Date,
		Time:            e.Time,
		Location:        e.Location,
		EnrollmentCount: e.EnrollmentCount,
		CreatedAt:       e.CreatedAt,
	}
}

type dbEnrollment struct {
	ID          string      `db:"id"`
	ExamID      string      `db:"fk_exame"`
	StudentID   string      `db:"fk_aluno"`
	StudentName string      `db:"aluno_nome"`
	StudentRank string      `db:"aluno_faixa"`
	Kihon       float64     `db:"nota_kihon"`
	Kata        float64     `db:"nota_kata"`
	Kumite      float64     `db:"nota_kumite"`
	Gerais      float64     `db:"nota_gerais"`
	Average     float64     `db:"media_final"`
	Passed      bool        `db:"aprovado"`
	Remark      null.String `db:"observacao"`
}

func (e dbEnrollment) toCore() exam.Enrollment {
	return exam.Enrollment{
		ID:          e.ID,
		ExamID:      e.ExamID,
		StudentID:   e.StudentID,
		StudentName: e.StudentName,
		StudentRank: e.StudentRank,
		Scores: exam.Scores{
			Kihon:  e.Kihon,
			Kata:   e.Kata,
			Kumite: e.Kumite,
			Gerais: e.Gerais,
		},
		Average: e.Average,
		Passed:  e.Passed,
		Remark:  e.Remark,
	}
}

const enrollmentColumns = `
	id, fk_exame, fk_aluno, aluno_nome, aluno_faixa,
	nota_kihon, nota_kata, nota_kumite, nota_gerais, media_final, aprovado, observacao`

type examRepository struct {
	exec core.DBExecutor
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

// most recent exams first
var examOrdering = core.DBOrdering{Field: "e.created_at"}

func NewExamRepository(exec core.DBExecutor) *examRepository {
	return &examRepository{exec: exec}
}

func (repo examRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo examRepository) scanExams(rows *sql.Rows) ([]exam.Exam, error) {
	defer func() { _ = rows.Close() }()
	var dbExams []dbExam
	if err := sqlx.StructScan(rows, &dbExams); err != nil {
		return nil, err
	}
	exams := make([]exam.Exam, 0, len(dbExams))
	for _, e := range dbExams {
		exams = append(exams, e.toCore())
	}
	return exams, nil
}

func (repo examRepository) scanEnrollments(rows *sql.Rows) ([]exam.Enrollment, error) {
	defer func() { _ = rows.Close() }()
	var dbEnrollments []dbEnrollment
	if err := sqlx.StructScan(rows, &dbEnrollments); err != nil {
		return nil, err
	}
	enrollments := make([]exam.Enrollment, 0, len(dbEnrollments))
	for _, e := range dbEnrollments {
		enrollments = append(enrollments, e.toCore())
	}
	return enrollments, nil
}

func (repo examRepository) CreateExam(ctx context.Context, ex exam.Exam, exec ...core.DBExecutor) (exam.Exam, error) {
	ex.ID = uuid.New().String()
	q := `
		INSERT INTO exames (id, nome_evento, data, hora, local, created_at, updated_at)
		VALUES ($1, $2, $3::date, $4, $5, $6, $6)`
	_, err := repo.getExec(exec).ExecContext(
		ctx, q,
		ex.ID, ex.EventName, ex.Date, ex.Time, ex.Location, ex.CreatedAt,
	)
	if err != nil {
		return exam.Exam{}, errors.Wrap(err, "inserting exam")
	}
	return ex, nil
}

func (repo examRepository) QueryExams(ctx context.Context, exec ...core.DBExecutor) ([]exam.Exam, error) {
	q := `
		SELECT e.id, e.nome_evento, e.data::text AS data, e.hora, e.local,
		       COUNT(i.id) AS total_inscricoes, e.created_at
		FROM exames e
		LEFT JOIN inscricoes i ON i.fk_exame = e.id
		GROUP BY e.id
		ORDER BY ` + examOrdering.String()
	rows, err := repo.getExec(exec).QueryContext(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "querying exams")
	}
	exams, err := repo.scanExams(rows)
	if err != nil {
		return nil, errors.Wrap(err, "scanning exams")
	}
	return exams, nil
}

func (repo examRepository) GetExamByID(ctx context.Context, id string, exec ...core.DBExecutor) (exam.Exam, error) {
	if !validID(id) {
		return exam.Exam{}, exam.ErrNotFound
	}
	q := `
		SELECT e.id, e.nome_evento, e.data::text AS data, e.hora, e.local,
		       COUNT(i.id) AS total_inscricoes, e.created_at
		FROM exames e
		LEFT JOIN inscricoes i ON i.fk_exame = e.id
		WHERE e.id = $1
		GROUP BY e.id`
	rows, err := repo.getExec(exec).QueryContext(ctx, q, id)
	if err != nil {
		return exam.Exam{}, errors.Wrap(err, "getting exam")
	}
	exams, err := repo.scanExams(rows)
	if err != nil {
		return exam.Exam{}, errors.Wrap(err, "scanning exam")
	}
	if len(exams) == 0 {
		return exam.Exam{}, exam.ErrNotFound
	}
	return exams[0], nil
}

func (repo examRepository) UpdateExam(ctx context.Context, ex exam.Exam, exec ...core.DBExecutor) (exam.Exam, error) {
	if !validID(ex.ID) {
		return exam.Exam{}, exam.ErrNotFound
	}
	q := `
		UPDATE exames
		SET nome_evento = COALESCE(NULLIF($2, ''), nome_evento),
		    data        = COALESCE(NULLIF($3, '')::date, data),
		    hora        = COALESCE(NULLIF($4, ''), hora),
		    local       = COALESCE(NULLIF($5, ''), local),
		    updated_at  = $6
		WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(
		ctx, q,
		ex.ID, ex.EventName, ex.Date, ex.Time, ex.Location, time.Now().UTC(),
	)
	if err != nil {
		return exam.Exam{}, errors.Wrap(err, "updating exam")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return exam.Exam{}, exam.ErrNotFound
	}
	return repo.GetExamByID(ctx, ex.ID, exec...)
}

func (repo examRepository) DeleteExamByID(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if !validID(id) {
		return exam.ErrNotFound
	}
	// inscricoes go with it, fk_exame is ON DELETE CASCADE
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM exames WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return exam.ErrNotFound
	}
	return nil
}

func (repo examRepository) CreateEnrollments(ctx context.Context, enrls []exam.Enrollment, exec ...core.DBExecutor) ([]exam.Enrollment, error) {
	q := `
		INSERT INTO inscricoes (id, fk_exame, fk_aluno, aluno_nome, aluno_faixa,
		                        nota_kihon, nota_kata, nota_kumite, nota_gerais,
		                        media_final, aprovado, observacao, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)`
	now := time.Now().UTC()
	ex := repo.getExec(exec)
	created := make([]exam.Enrollment, 0, len(enrls))
	for _, enr := range enrls {
		enr.ID = uuid.New().String()
		_, err := ex.ExecContext(
			ctx, q,
			enr.ID, enr.ExamID, enr.StudentID, enr.StudentName, enr.StudentRank,
			enr.Scores.Kihon, enr.Scores.Kata, enr.Scores.Kumite, enr.Scores.Gerais,
			enr.Average, enr.Passed, enr.Remark, now,
		)
		if err != nil {
			return nil, errors.Wrap(err, "inserting enrollment")
		}
		created = append(created, enr)
	}
	return created, nil
}

func (repo examRepository) QueryEnrollmentsByExam(ctx context.Context, examID string, exec ...core.DBExecutor) ([]exam.Enrollment, error) {
	if !validID(examID) {
		return []exam.Enrollment{}, nil
	}
	q := `
		SELECT ` + enrollmentColumns + `
		FROM inscricoes
		WHERE fk_exame = $1
		ORDER BY media_final DESC, aluno_nome ASC`
	rows, err := repo.getExec(exec).QueryContext(ctx, q, examID)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrollments, err := repo.scanEnrollments(rows)
	if err != nil {
		return nil, errors.Wrap(err, "scanning enrollments")
	}
	return enrollments, nil
}

func (repo examRepository) GetEnrollmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (exam.Enrollment, error) {
	if !validID(id) {
		return exam.Enrollment{}, exam.ErrEnrollmentNotFound
	}
	q := `SELECT ` + enrollmentColumns + ` FROM inscricoes WHERE id = $1`
	rows, err := repo.getExec(exec).QueryContext(ctx, q, id)
	if err != nil {
		return exam.Enrollment{}, errors.Wrap(err, "getting enrollment")
	}
	enrollments, err := repo.scanEnrollments(rows)
	if err != nil {
		return exam.Enrollment{}, errors.Wrap(err, "scanning enrollment")
	}
	if len(enrollments) == 0 {
		return exam.Enrollment{}, exam.ErrEnrollmentNotFound
	}
	return enrollments[0], nil
}

func (repo examRepository) UpdateEnrollmentScores(ctx context.Context, enr exam.Enrollment, exec ...core.DBExecutor) (exam.Enrollment, error) {
	if !validID(enr.ID) {
		return exam.Enrollment{}, exam.ErrEnrollmentNotFound
	}
	q := `
		UPDATE inscricoes
		SET nota_kihon  = $2,
		    nota_kata   = $3,
		    nota_kumite = $4,
		    nota_gerais = $5,
		    media_final = $6,
		    aprovado    = $7,
		    observacao  = $8,
		    updated_at  = $9
		WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(
		ctx, q,
		enr.ID, enr.Scores.Kihon, enr.Scores.Kata, enr.Scores.Kumite, enr.Scores.Gerais,
		enr.Average, enr.Passed, enr.Remark, time.Now().UTC(),
	)
	if err != nil {
		return exam.Enrollment{}, errors.Wrap(err, "updating enrollment scores")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return exam.Enrollment{}, exam.ErrEnrollmentNotFound
	}
	return enr, nil
}
