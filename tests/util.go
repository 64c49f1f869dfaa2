package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tbahati/dojokai/core/exam"
	"github.com/tbahati/dojokai/core/instructor"
	"github.com/tbahati/dojokai/core/student"
	"github.com/tbahati/dojokai/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, accessLevel string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:        name,
		Email:       email,
		AccessLevel: accessLevel,
		IsActive:    isActive,
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	name, birthDate, rank string,
	isActive bool,
) student.Student {
	t.Helper()

	now := time.Now().UTC()
	std := student.Student{
		Name:            name,
		BirthDate:       birthDate,
		Rank:            rank,
		LastPromotionAt: null.StringFrom(now.Format("2006-01-02")),
		IsActive:        isActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	std, err := repo.CreateStudent(context.Background(), std)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateInstructor(
	t *testing.T,
	repo instructor.Repository,
	name, cpf, birthDate string,
) instructor.Instructor {
	t.Helper()

	now := time.Now().UTC()
	ins := instructor.Instructor{
		Name:      name,
		CPF:       cpf,
		BirthDate: birthDate,
		Rank:      null.StringFrom("Preta"),
		HiredAt:   now.Format("2006-01-02"),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ins, err := repo.CreateInstructor(context.Background(), ins)
	if err != nil {
		t.Fatalf("CreateInstructor() failed: %v", err)
	}
	return ins
}

func CreateExam(
	t *testing.T,
	repo exam.Repository,
	eventName, date, hour, location string,
) exam.Exam {
	t.Helper()

	ex := exam.Exam{
		EventName: eventName,
		Date:      date,
		Time:      hour,
		Location:  location,
		CreatedAt: time.Now().UTC(),
	}
	ex, err := repo.CreateExam(context.Background(), ex)
	if err != nil {
		t.Fatalf("CreateExam() failed: %v", err)
	}
	return ex
}

func EnrollStudent(
	t *testing.T,
	repo exam.Repository,
	ex exam.Exam,
	std student.Student,
) exam.Enrollment {
	t.Helper()

	enrl := exam.Enrollment{
		ExamID:      ex.ID,
		StudentID:   std.ID,
		StudentName: std.Name,
		StudentRank: std.Rank,
	}
	enrl.Grade()
	created, err := repo.CreateEnrollments(context.Background(), []exam.Enrollment{enrl})
	if err != nil {
		t.Fatalf("EnrollStudent() failed: %v", err)
	}
	return created[0]
}
