package exam_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tbahati/dojokai/core/exam"
	inmemdb "github.com/tbahati/dojokai/storage/database/inmem"
	testutil "github.com/tbahati/dojokai/tests"
)

func setup(t *testing.T) (*exam.Service, exam.Repository, *inmemdb.DB) {
	db := inmemdb.Open()
	repo := inmemdb.NewExamRepository(db)
	svc := exam.NewService(db, repo, inmemdb.NewStudentRepository(db))
	return svc, repo, db
}

func Test_examService_Create(t *testing.T) {
	svc, repo, db := setup(t)
	ctx := context.Background()

	ana := testutil.CreateStudent(t, inmemdb.NewStudentRepository(db), "Ana Souza", "2008-03-14", "Amarela", true)
	bruno := testutil.CreateStudent(t, inmemdb.NewStudentRepository(db), "Bruno Lima", "2006-11-02", "Roxa", true)

	ne := exam.NewExam{
		EventName:  "Exame de Faixa 2026.2",
		Date:       "2026-10-12",
		Time:       "09:00",
		Location:   "Dojo Central",
		StudentIDs: []string{ana.ID, "fantasma", bruno.ID, "espectro"},
	}
	ex, skipped, err := svc.Create(ctx, ne)
	assert.NoError(t, err)
	assert.NotEmpty(t, ex.ID)
	assert.Equal(t, 2, ex.EnrollmentCount)
	assert.Equal(t, []string{"fantasma", "espectro"}, skipped)

	enrls, err := repo.QueryEnrollmentsByExam(ctx, ex.ID)
	assert.NoError(t, err)
	if assert.Len(t, enrls, 2) {
		// zeroed scorecards tie, so name decides the order
		assert.Equal(t, ana.Name, enrls[0].StudentName)
		assert.Equal(t, ana.Rank, enrls[0].StudentRank)
		assert.Equal(t, bruno.Name, enrls[1].StudentName)
		for _, enr := range enrls {
			assert.Zero(t, enr.Average)
			assert.False(t, enr.Passed)
		}
	}
}

func Test_examService_UpdateScores(t *testing.T) {
	svc, repo, db := setup(t)
	ctx := context.Background()

	std := testutil.CreateStudent(t, inmemdb.NewStudentRepository(db), "Ana Souza", "2008-03-14", "Amarela", true)
	ex := testutil.CreateExam(t, repo, "Exame de Faixa", "2026-10-12", "09:00", "Dojo Central")
	enrl := testutil.EnrollStudent(t, repo, ex, std)

	scoPtr := func(f float64) *exam.Score { s := exam.Score(f); return &s }

	enrl, err := svc.UpdateScores(ctx, enrl.ID, exam.ScoreUpdate{
		Kihon: scoPtr(8), Kata: scoPtr(7), Kumite: scoPtr(6), Gerais: scoPtr(5),
	})
	assert.NoError(t, err)
	assert.Equal(t, 6.5, enrl.Average)
	assert.True(t, enrl.Passed)

	// partial update: only kumite changes, media/aprovado recomputed
	enrl, err = svc.UpdateScores(ctx, enrl.ID, exam.ScoreUpdate{Kumite: scoPtr(0)})
	assert.NoError(t, err)
	assert.Equal(t, exam.Scores{Kihon: 8, Kata: 7, Kumite: 0, Gerais: 5}, enrl.Scores)
	assert.Equal(t, 5.0, enrl.Average)
	assert.False(t, enrl.Passed)

	_, err = svc.UpdateScores(ctx, "lol", exam.ScoreUpdate{Kihon: scoPtr(8)})
	assert.Equal(t, exam.ErrEnrollmentNotFound, err)
}

func Test_examService_Ranking(t *testing.T) {
	svc, repo, db := setup(t)
	ctx := context.Background()
	stdRepo := inmemdb.NewStudentRepository(db)

	ex := testutil.CreateExam(t, repo, "Exame de Faixa", "2026-10-12", "09:00", "Dojo Central")
	grade := func(name string, scores exam.Scores) exam.Enrollment {
		std := testutil.CreateStudent(t, stdRepo, name, "2007-01-01", "Amarela", true)
		enrl := testutil.EnrollStudent(t, repo, ex, std)
		enrl.Scores = scores
		enrl.Grade()
		enrl, err := repo.UpdateEnrollmentScores(ctx, enrl)
		assert.NoError(t, err)
		return enrl
	}

	grade("Carla", exam.Scores{Kihon: 6, Kata: 6, Kumite: 6, Gerais: 6}) // 6.0
	grade("Ana", exam.Scores{Kihon: 9, Kata: 9, Kumite: 8, Gerais: 8})   // 8.5
	grade("Bia", exam.Scores{Kihon: 7, Kata: 7, Kumite: 5, Gerais: 5})   // 6.0

	ranked, err := svc.Ranking(ctx, ex.ID)
	assert.NoError(t, err)
	if assert.Len(t, ranked, 3) {
		assert.Equal(t, "Ana", ranked[0].StudentName)
		assert.Equal(t, "Bia", ranked[1].StudentName) // 6.0 tie, name decides
		assert.Equal(t, "Carla", ranked[2].StudentName)
	}

	ranked, err = svc.Ranking(ctx, "lol")
	assert.NoError(t, err)
	assert.Empty(t, ranked)
}

func Test_examService_Delete(t *testing.T) {
	svc, repo, db := setup(t)
	ctx := context.Background()

	std := testutil.CreateStudent(t, inmemdb.NewStudentRepository(db), "Ana Souza", "2008-03-14", "Amarela", true)
	ex := testutil.CreateExam(t, repo, "Exame de Faixa", "2026-10-12", "09:00", "Dojo Central")
	enrl := testutil.EnrollStudent(t, repo, ex, std)

	assert.NoError(t, svc.Delete(ctx, ex.ID))

	_, err := repo.GetExamByID(ctx, ex.ID)
	assert.Equal(t, exam.ErrNotFound, err)
	_, err = repo.GetEnrollmentByID(ctx, enrl.ID)
	assert.Equal(t, exam.ErrEnrollmentNotFound, err)

	assert.Equal(t, exam.ErrNotFound, svc.Delete(ctx, "lol"))
}
