package user

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tbahati/dojokai/core"
)

// Access levels
const (
	AccessStudent    = "aluno"
	AccessInstructor = "professor"
	AccessAdmin      = "admin"
)

var AccessLevels = []string{AccessStudent, AccessInstructor, AccessAdmin}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"nome"`
	Email        string    `json:"email"`
	AccessLevel  string    `json:"nivel_acesso"`
	IsActive     bool      `json:"ativo"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool      { return u.AccessLevel == AccessAdmin }
func (u *User) IsInstructor() bool { return u.AccessLevel == AccessInstructor }
func (u *User) IsStudent() bool    { return u.AccessLevel == AccessStudent }

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name        string `json:"nome" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"senha" validate:"required,min=8"`
	AccessLevel string `json:"nivel_acesso" validate:"omitempty,oneof=aluno professor admin"`
}

func (nu *NewUser) Validate(ctx context.Context, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name        string `json:"nome"`
	Email       string `json:"email" validate:"omitempty,email"`
	AccessLevel string `json:"nivel_acesso" validate:"omitempty,oneof=aluno professor admin"`
	IsActive    *bool  `json:"ativo"`
	Password    string `json:"senha" validate:"omitempty,min=8"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, svc *Service) error {
	name := core.CleanString(uu.Name)
	if name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if uu.AccessLevel == "" {
		uu.AccessLevel = origUsr.AccessLevel
	}

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uu.Email, origUsr)
}

type ResetUserPassword struct {
	Token    string `json:"token,omitempty" validate:"required"`
	UID      string `json:"uid,omitempty" validate:"required"`
	Password string `json:"senha,omitempty" validate:"required,min=8"`
}

func (rp ResetUserPassword) Validate() error { return core.Validate.Struct(rp) }
