package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	. "github.com/tbahati/dojokai/apps/api/echo"
	"github.com/tbahati/dojokai/core"
	"github.com/tbahati/dojokai/core/class"
	"github.com/tbahati/dojokai/core/exam"
	"github.com/tbahati/dojokai/core/instructor"
	"github.com/tbahati/dojokai/core/student"
	"github.com/tbahati/dojokai/core/user"
	emailsvc "github.com/tbahati/dojokai/services/email"
	logsvc "github.com/tbahati/dojokai/services/logger"
	inmemdb "github.com/tbahati/dojokai/storage/database/inmem"
)

var (
	db      *inmemdb.DB
	app     Server
	usrRepo user.Repository
	stdRepo student.Repository
	insRepo instructor.Repository
	clsRepo class.Repository
	exmRepo exam.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	core.Conf.Debug = false
	core.Conf.TestMode = true

	// set up DB & repos
	db = inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	stdRepo = inmemdb.NewStudentRepository(db)
	insRepo = inmemdb.NewInstructorRepository(db)
	clsRepo = inmemdb.NewClassRepository(db)
	exmRepo = inmemdb.NewExamRepository(db)

	// set up services
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), core.Conf)
	logger.Enable(false)
	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc := user.NewService(usrRepo, mailSvc)
	stdSvc := student.NewService(stdRepo)
	insSvc := instructor.NewService(db, insRepo, usrSvc)
	clsSvc := class.NewService(clsRepo, insRepo)
	exmSvc := exam.NewService(db, exmRepo, stdRepo)

	// set up server
	app = NewServer(&Options{
		DisableReqLogs: true,
		Logger:         logger,
		UserSvc:        usrSvc,
		StudentSvc:     stdSvc,
		InstructorSvc:  insSvc,
		ClassSvc:       clsSvc,
		ExamSvc:        exmSvc,
	})

	os.Exit(m.Run())
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = make([]interface{}, 0) // handlers return [], never null
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
