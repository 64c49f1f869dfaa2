package student

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tbahati/dojokai/core"
)

// DefaultRank is the belt every student starts with.
const DefaultRank = "Branca"

type Student struct {
	ID              string      `json:"id"`
	Name            string      `json:"nome"`
	BirthDate       string      `json:"data_nascimento"` // YYYY-MM-DD
	Rank            string      `json:"grau_atual"`      // belt: Branca, Amarela, Roxa, Preta...
	LastPromotionAt null.String `json:"data_ultima_graduacao"`
	NextPromotionAt null.String `json:"data_proxima_graduacao"`
	IsActive        bool        `json:"ativo"`
	UserID          null.String `json:"fk_usuario"`
	CreatedAt       time.Time   `json:"-"` // UTC
	UpdatedAt       time.Time   `json:"-"` // UTC
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	Name            string `json:"nome" validate:"required"`
	BirthDate       string `json:"data_nascimento" validate:"required,datetime=2006-01-02"`
	Rank            string `json:"grau_atual"`
	NextPromotionAt string `json:"data_proxima_graduacao" validate:"omitempty,datetime=2006-01-02"`
	UserID          string `json:"fk_usuario"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Rank = core.CleanString(ns.Rank)
	return core.Validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	Name            string `json:"nome"`
	BirthDate       string `json:"data_nascimento" validate:"omitempty,datetime=2006-01-02"`
	Rank            string `json:"grau_atual"`
	LastPromotionAt string `json:"data_ultima_graduacao" validate:"omitempty,datetime=2006-01-02"`
	NextPromotionAt string `json:"data_proxima_graduacao" validate:"omitempty,datetime=2006-01-02"`
	IsActive        *bool  `json:"ativo"`
}

func (us *UpdateStudent) Validate(origStd Student) error {
	name := core.CleanString(us.Name)
	if name != "" {
		us.Name = name
	} else {
		us.Name = origStd.Name
	}
	if us.BirthDate == "" {
		us.BirthDate = origStd.BirthDate
	}
	rank := core.CleanString(us.Rank)
	if rank != "" {
		us.Rank = rank
	} else {
		us.Rank = origStd.Rank
	}
	if us.LastPromotionAt == "" {
		us.LastPromotionAt = origStd.LastPromotionAt.String
	}
	if us.NextPromotionAt == "" {
		us.NextPromotionAt = origStd.NextPromotionAt.String
	}
	return core.Validate.Struct(us)
}

type QueryFilter struct {
	// IncludeInactive also returns deactivated students. The default
	// listing only shows active ones.
	IncludeInactive bool `query:"incluir_inativos"`
	Rank            string
}
