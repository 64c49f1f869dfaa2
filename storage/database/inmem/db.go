// Package inmemdb provides map-backed repositories for tests. They honor
// the same contracts as the SQL repositories, including the enrollment
// cascade on exam deletion, but keep everything in process memory.
package inmemdb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/tbahati/dojokai/core"
	"github.com/tbahati/dojokai/core/class"
	"github.com/tbahati/dojokai/core/exam"
	"github.com/tbahati/dojokai/core/instructor"
	"github.com/tbahati/dojokai/core/student"
	"github.com/tbahati/dojokai/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users       map[string]*user.User
	students    map[string]*student.Student
	instructors map[string]*instructor.Instructor
	classes     map[string]*class.ClassGroup
	exams       map[string]*exam.Exam
	enrollments map[string]*exam.Enrollment
}

func Open() *DB {
	db := &DB{}
	db.reset()
	return db
}

func (db *DB) reset() {
	db.users = make(map[string]*user.User)
	db.students = make(map[string]*student.Student)
	db.instructors = make(map[string]*instructor.Instructor)
	db.classes = make(map[string]*class.ClassGroup)
	db.exams = make(map[string]*exam.Exam)
	db.enrollments = make(map[string]*exam.Enrollment)
}

// Reset drops all tables. For use between test cases.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.reset()
}

var _ core.TxBeginner = (*DB)(nil)

func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (core.DBTransactor, error) {
	return noopTx{}, nil
}

// noopTx satisfies core.DBTransactor; the map repositories apply writes
// immediately so commit and rollback have nothing to do.
type noopTx struct{}

func (noopTx) Exec(query string, args ...interface{}) (sql.Result, error) { return nil, nil }
func (noopTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (noopTx) Query(query string, args ...interface{}) (*sql.Rows, error) { return nil, nil }
func (noopTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (noopTx) QueryRow(query string, args ...interface{}) *sql.Row { return nil }
func (noopTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}
func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }
