package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tbahati/dojokai/core"
	"github.com/tbahati/dojokai/core/class"
	"github.com/tbahati/dojokai/core/exam"
	"github.com/tbahati/dojokai/core/instructor"
	"github.com/tbahati/dojokai/core/student"
	"github.com/tbahati/dojokai/core/user"

	echoapi "github.com/tbahati/dojokai/apps/api/echo"
	emailsvc "github.com/tbahati/dojokai/services/email"
	logsvc "github.com/tbahati/dojokai/services/logger"
	"github.com/tbahati/dojokai/storage/database"
	sqlxrepos "github.com/tbahati/dojokai/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	db, err := setUpDB()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()
	txDB := database.NewTxDB(db)

	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc)
	stdSvc := student.NewService(sqlxrepos.NewStudentRepository(db))
	insRepo := sqlxrepos.NewInstructorRepository(db)
	insSvc := instructor.NewService(txDB, insRepo, usrSvc)
	clsSvc := class.NewService(sqlxrepos.NewClassRepository(db), insRepo)
	examSvc := exam.NewService(txDB, sqlxrepos.NewExamRepository(db), sqlxrepos.NewStudentRepository(db))

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(
		&echoapi.Options{
			Addr:          core.Conf.Server.Addr,
			Logger:        logger,
			UserSvc:       usrSvc,
			StudentSvc:    stdSvc,
			InstructorSvc: insSvc,
			ClassSvc:      clsSvc,
			ExamSvc:       examSvc,
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case <-server.ShutdownSignal():
		logger.Info("integrity issue: Start shutdown...")

		ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}

	case sig := <-quit:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func setUpDB() (*sql.DB, error) {
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return nil, err
	}

	db, err := database.Open(core.Conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
