package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	echoapi "github.com/tbahati/dojokai/apps/api/echo"
	"github.com/tbahati/dojokai/core/exam"
	"github.com/tbahati/dojokai/core/user"
	testutil "github.com/tbahati/dojokai/tests"
)

func Test_examApi_create(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.br", "", user.AccessAdmin, true)
	aluno := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.br", "", user.AccessStudent, true)
	std1 := testutil.CreateStudent(t, stdRepo, "Ana Souza", "2008-03-14", "Amarela", true)
	std2 := testutil.CreateStudent(t, stdRepo, "Bruno Lima", "2006-11-02", "Roxa", true)

	adminToken := getToken(t, admin)
	reqMsg := "this field is required"

	body := func(roster ...string) []byte {
		if roster == nil {
			roster = []string{} // [] fails min=1, null would fail required instead
		}
		return marchallObj(t, exam.NewExam{
			EventName:  "Exame de Faixa 2026.2",
			Date:       "2026-10-12",
			Time:       "09:00",
			Location:   "Dojo Central",
			StudentIDs: roster,
		})
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Staff required", token: getToken(t, aluno), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", token: adminToken, body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"nome_evento": reqMsg, "data": reqMsg, "hora": reqMsg, "local": reqMsg, "alunos_ids": reqMsg,
			}),
		},
		{
			name: "empty roster", token: adminToken, body: body(), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"alunos_ids": "alunos_ids must contain at least 1 item"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/v1/exames"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Nothing persisted on rejection", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/exames", adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t)}, rec)
	})

	t.Run("Unknown roster IDs skipped", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/exames", adminToken, body(std1.ID, std2.ID, "fantasma"))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var resp echoapi.ExamCreatedResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if resp.Exam.ID == "" {
			t.Error("failed! empty exam ID")
		}
		if resp.Exam.EnrollmentCount != 2 {
			t.Errorf("failed! total_inscricoes = %d; want 2", resp.Exam.EnrollmentCount)
		}
		if len(resp.SkippedRoster) != 1 || resp.SkippedRoster[0] != "fantasma" {
			t.Errorf("failed! alunos_ignorados = %v; want [fantasma]", resp.SkippedRoster)
		}

		// the roster was enrolled with zeroed scorecards, tied scores order by name
		enrls, err := exmRepo.QueryEnrollmentsByExam(context.Background(), resp.Exam.ID)
		if err != nil {
			t.Fatalf("QueryEnrollmentsByExam() failed, %v", err)
		}
		if len(enrls) != 2 {
			t.Fatalf("failed! len(enrollments) = %d; want 2", len(enrls))
		}
		if enrls[0].StudentName != std1.Name || enrls[1].StudentName != std2.Name {
			t.Errorf("failed! enrollment order = [%s, %s]", enrls[0].StudentName, enrls[1].StudentName)
		}
		for _, enr := range enrls {
			if enr.Average != 0 || enr.Passed {
				t.Errorf("failed! fresh scorecard media = %v, aprovado = %v", enr.Average, enr.Passed)
			}
		}
		if enrls[0].StudentRank != std1.Rank {
			t.Errorf("failed! aluno_faixa = %s; want %s", enrls[0].StudentRank, std1.Rank)
		}
	})
}

func Test_examApi_retrieveAndUpdate(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.br", "", user.AccessAdmin, true)
	aluno := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.br", "", user.AccessStudent, true)
	ex := testutil.CreateExam(t, exmRepo, "Exame de Inverno", "2026-07-20", "10:00", "Dojo Norte")

	adminToken := getToken(t, admin)

	tests := []httpTest{
		{
			name: "Retrieve", method: http.MethodGet, path: "/api/v1/exames/" + ex.ID, token: getToken(t, aluno),
			wantCode: http.StatusOK, wantData: marchallObj(t, ex),
		},
		{
			name: "Retrieve unknown", method: http.MethodGet, path: "/api/v1/exames/lol", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "exam not found"}),
		},
		{
			name: "Update unknown", method: http.MethodPatch, path: "/api/v1/exames/lol", token: adminToken,
			body:     marchallObj(t, exam.UpdateExam{Location: "Dojo Sul"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "exam not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Partial update keeps the rest", func(t *testing.T) {
		req, rec := newAuthRequest(
			http.MethodPatch, "/api/v1/exames/"+ex.ID, adminToken,
			marchallObj(t, exam.UpdateExam{Location: "Dojo Sul"}),
		)
		app.ServeHTTP(rec, req)

		want := ex
		want.Location = "Dojo Sul"
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, want)}, rec)
	})
}

func Test_examApi_updateScores(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.br", "", user.AccessAdmin, true)
	std := testutil.CreateStudent(t, stdRepo, "Ana Souza", "2008-03-14", "Amarela", true)
	ex := testutil.CreateExam(t, exmRepo, "Exame de Faixa", "2026-10-12", "09:00", "Dojo Central")
	enrl := testutil.EnrollStudent(t, exmRepo, ex, std)

	adminToken := getToken(t, admin)
	path := "/api/v1/exames/notas/" + enrl.ID

	tests := []httpTest{
		{
			name: "Full scorecard", method: http.MethodPatch, path: path,
			body:     []byte(`{"kihon": 8, "kata": 7, "kumite": 6, "gerais": 5}`),
			wantCode: http.StatusOK, wantData: marchallObj(t, exam.ScoreResult{Average: 6.5, Passed: true}),
		},
		{
			name: "Partial update drops below pass mark", method: http.MethodPatch, path: path,
			body:     []byte(`{"kumite": 0}`),
			wantCode: http.StatusOK, wantData: marchallObj(t, exam.ScoreResult{Average: 5, Passed: false}),
		},
		{
			name: "Numeric strings and blanks accepted", method: http.MethodPost, path: path,
			body:     []byte(`{"kihon": "9.5", "kumite": ""}`),
			wantCode: http.StatusOK, wantData: marchallObj(t, exam.ScoreResult{Average: 5.4, Passed: false}),
		},
		{
			name: "Garbage score rejected", method: http.MethodPatch, path: path,
			body:     []byte(`{"kihon": "lol"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Unknown enrollment", method: http.MethodPatch, path: "/api/v1/exames/notas/lol",
			body:     []byte(`{"kihon": 8}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "enrollment not found"}),
		},
	}
	for _, tt := range tests {
		tt.token = adminToken

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData == nil {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Remark stored with the scorecard", func(t *testing.T) {
		req, rec := newAuthRequest(
			http.MethodPatch, path, adminToken,
			[]byte(`{"gerais": 10, "observacao": "Kata impecável"}`),
		)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}

		refreshed, err := exmRepo.GetEnrollmentByID(context.Background(), enrl.ID)
		if err != nil {
			t.Fatalf("GetEnrollmentByID() failed, %v", err)
		}
		if refreshed.Remark.String != "Kata impecável" {
			t.Errorf("failed! observacao = %q", refreshed.Remark.String)
		}
		if refreshed.Scores.Kihon != 9.5 { // untouched by this update
			t.Errorf("failed! kihon = %v; want 9.5", refreshed.Scores.Kihon)
		}
	})
}

func Test_examApi_ranking(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.br", "", user.AccessAdmin, true)
	ex := testutil.CreateExam(t, exmRepo, "Exame de Faixa", "2026-10-12", "09:00", "Dojo Central")

	grade := func(name string, kihon, kata, kumite, gerais float64) exam.Enrollment {
		std := testutil.CreateStudent(t, stdRepo, name, "2007-01-01", "Amarela", true)
		enrl := testutil.EnrollStudent(t, exmRepo, ex, std)
		enrl.Scores = exam.Scores{Kihon: kihon, Kata: kata, Kumite: kumite, Gerais: gerais}
		enrl.Grade()
		enrl, err := exmRepo.UpdateEnrollmentScores(context.Background(), enrl)
		if err != nil {
			t.Fatalf("UpdateEnrollmentScores() failed, %v", err)
		}
		return enrl
	}

	// carla and bia tie on 6.0, name breaks the tie
	ana := grade("Ana", 9, 9, 8, 8)     // 8.5
	carla := grade("Carla", 6, 6, 6, 6) // 6.0
	bia := grade("Bia", 7, 7, 5, 5)     // 6.0
	duda := grade("Duda", 4, 5, 3, 2)   // 3.5

	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "Auth required", path: fmt.Sprintf("/api/v1/exames/%s/banca", ex.ID), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Ranked by media, name on ties", path: fmt.Sprintf("/api/v1/exames/%s/banca", ex.ID), token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, ana, bia, carla, duda),
		},
		{
			name: "Unknown exam yields empty list", path: "/api/v1/exames/lol/banca", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_examApi_destroy(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.br", "", user.AccessAdmin, true)
	aluno := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.br", "", user.AccessStudent, true)
	std := testutil.CreateStudent(t, stdRepo, "Ana Souza", "2008-03-14", "Amarela", true)
	ex := testutil.CreateExam(t, exmRepo, "Exame de Faixa", "2026-10-12", "09:00", "Dojo Central")
	enrl := testutil.EnrollStudent(t, exmRepo, ex, std)

	adminToken := getToken(t, admin)

	t.Run("Staff required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/v1/exames/"+ex.ID, getToken(t, aluno))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		}, rec)
	})

	t.Run("Unknown exam", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/v1/exames/lol", adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "exam not found"}),
		}, rec)
	})

	t.Run("Enrollments removed with the exam", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/v1/exames/"+ex.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}

		if _, err := exmRepo.GetExamByID(context.Background(), ex.ID); err != exam.ErrNotFound {
			t.Errorf("GetExamByID() error = %v, want %v", err, exam.ErrNotFound)
		}
		if _, err := exmRepo.GetEnrollmentByID(context.Background(), enrl.ID); err != exam.ErrEnrollmentNotFound {
			t.Errorf("GetEnrollmentByID() error = %v, want %v", err, exam.ErrEnrollmentNotFound)
		}
	})
}
