package instructor

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tbahati/dojokai/core"
)

type Instructor struct {
	ID        string      `json:"id"`
	Name      string      `json:"nome"`
	CPF       string      `json:"cpf"` // digits only
	BirthDate string      `json:"data_nascimento"`
	Phone     null.String `json:"telefone"` // digits only
	Address   null.String `json:"endereco"`
	Rank      null.String `json:"grau_faixa"`
	HiredAt   string      `json:"data_contratacao"`
	IsActive  bool        `json:"ativo"`
	UserID    string      `json:"fk_usuario"`
	CreatedAt time.Time   `json:"-"` // UTC
	UpdatedAt time.Time   `json:"-"` // UTC
}

// NewInstructor contains information needed to hire a new Instructor.
// A login account is created alongside, hence the email/password fields.
type NewInstructor struct {
	Name      string `json:"nome" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"senha" validate:"required,min=8"`
	CPF       string `json:"cpf" validate:"required,cpf"`
	BirthDate string `json:"data_nascimento" validate:"required,datetime=2006-01-02"`
	Phone     string `json:"telefone" validate:"required"`
	Address   string `json:"endereco"`
	Rank      string `json:"grau" validate:"required"`
}

func (ni *NewInstructor) Validate(svc *Service) error {
	ni.Name = core.CleanString(ni.Name)
	ni.Email = core.CleanString(ni.Email, true /* lower */)
	ni.Rank = core.CleanString(ni.Rank)
	ni.Address = core.CleanString(ni.Address)

	if err := core.Validate.Struct(ni); err != nil {
		return err
	}
	// normalize after the checksum ran on the raw input
	ni.CPF = core.CleanDigits(ni.CPF)
	ni.Phone = core.CleanDigits(ni.Phone)
	return nil
}

// UpdateInstructor defines what information may be provided to modify an existing Instructor.
type UpdateInstructor struct {
	Name      string `json:"nome"`
	CPF       string `json:"cpf" validate:"omitempty,cpf"`
	BirthDate string `json:"data_nascimento" validate:"omitempty,datetime=2006-01-02"`
	Phone     string `json:"telefone"`
	Address   string `json:"endereco"`
	Rank      string `json:"grau"`
	IsActive  *bool  `json:"ativo"`
}

func (ui *UpdateInstructor) Validate(origIns Instructor) error {
	name := core.CleanString(ui.Name)
	if name != "" {
		ui.Name = name
	} else {
		ui.Name = origIns.Name
	}
	if err := core.Validate.Struct(ui); err != nil {
		return err
	}

	if ui.CPF != "" {
		ui.CPF = core.CleanDigits(ui.CPF)
	} else {
		ui.CPF = origIns.CPF
	}
	if ui.Phone != "" {
		ui.Phone = core.CleanDigits(ui.Phone)
	} else {
		ui.Phone = origIns.Phone.String
	}
	if ui.BirthDate == "" {
		ui.BirthDate = origIns.BirthDate
	}
	if ui.Address == "" {
		ui.Address = origIns.Address.String
	}
	if ui.Rank == "" {
		ui.Rank = origIns.Rank.String
	}
	return nil
}
