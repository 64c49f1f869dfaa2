package class

import (
	"time"

	"github.com/tbahati/dojokai/core"
)

// DefaultModality is applied when a class is created without one.
const DefaultModality = "Karatê"

type ClassGroup struct {
	ID             string    `json:"id"`
	Name           string    `json:"nome_turma"`
	Modality       string    `json:"modalidade"`
	Weekdays       []string  `json:"dias_semana"`
	StartTime      string    `json:"horario_inicio"` // HH:MM
	EndTime        string    `json:"horario_fim"`    // HH:MM
	InstructorID   string    `json:"fk_professor"`
	InstructorName string    `json:"professor_nome,omitempty"`
	CreatedAt      time.Time `json:"-"` // UTC
	UpdatedAt      time.Time `json:"-"` // UTC
}

// NewClassGroup contains information needed to open a new class.
type NewClassGroup struct {
	Name         string   `json:"nome_turma" validate:"required"`
	Modality     string   `json:"modalidade"`
	Weekdays     []string `json:"dias_semana" validate:"required,min=1,dive,required"`
	StartTime    string   `json:"horario_inicio" validate:"required,datetime=15:04"`
	EndTime      string   `json:"horario_fim" validate:"required,datetime=15:04"`
	InstructorID string   `json:"fk_professor" validate:"required"`
}

func (nc *NewClassGroup) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Modality = core.CleanString(nc.Modality)
	return core.Validate.Struct(nc)
}

// UpdateClassGroup defines what information may be provided to modify an existing class.
type UpdateClassGroup struct {
	Name         string   `json:"nome_turma"`
	Modality     string   `json:"modalidade"`
	Weekdays     []string `json:"dias_semana" validate:"omitempty,min=1,dive,required"`
	StartTime    string   `json:"horario_inicio" validate:"omitempty,datetime=15:04"`
	EndTime      string   `json:"horario_fim" validate:"omitempty,datetime=15:04"`
	InstructorID string   `json:"fk_professor"`
}

func (uc *UpdateClassGroup) Validate(origCls ClassGroup) error {
	name := core.CleanString(uc.Name)
	if name != "" {
		uc.Name = name
	} else {
		uc.Name = origCls.Name
	}
	modality := core.CleanString(uc.Modality)
	if modality != "" {
		uc.Modality = modality
	} else {
		uc.Modality = origCls.Modality
	}
	if uc.Weekdays == nil {
		uc.Weekdays = origCls.Weekdays
	}
	if uc.StartTime == "" {
		uc.StartTime = origCls.StartTime
	}
	if uc.EndTime == "" {
		uc.EndTime = origCls.EndTime
	}
	if uc.InstructorID == "" {
		uc.InstructorID = origCls.InstructorID
	}
	return core.Validate.Struct(uc)
}
