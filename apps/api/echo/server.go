package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/tbahati/dojokai/core"
	"github.com/tbahati/dojokai/core/class"
	"github.com/tbahati/dojokai/core/exam"
	"github.com/tbahati/dojokai/core/instructor"
	"github.com/tbahati/dojokai/core/student"
	"github.com/tbahati/dojokai/core/user"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		Logger        core.Logger
		UserSvc       *user.Service
		StudentSvc    *student.Service
		InstructorSvc *instructor.Service
		ClassSvc      *class.Service
		ExamSvc       *exam.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
		// ShutdownSignal receives when an unrecoverable error asked for a stop.
		ShutdownSignal() <-chan struct{}
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/api/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc)
	registerStudentAPI(v1, jwt, s.opts.StudentSvc)
	registerInstructorAPI(v1, jwt, s.opts.InstructorSvc)
	registerClassAPI(v1, jwt, s.opts.ClassSvc)
	registerExamAPI(v1, jwt, s.opts.ExamSvc)
}

// signalShutdown lets the error handler request a graceful stop when an
// unrecoverable error surfaces.
func (s *server) signalShutdown() {
	select {
	case s.shutdown <- struct{}{}:
	default:
	}
}

// ShutdownSignal receives when the server wants to be stopped.
func (s *server) ShutdownSignal() <-chan struct{} { return s.shutdown }

func (s *server) Start() error {
	return s.app.Start(s.opts.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Bem-vindo à API DojoKai!")
}
