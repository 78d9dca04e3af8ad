package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Actor roles. Anonymous never appears on a stored account; it is the
// implicit role of a visitor without a credential token.
const (
	RoleAnonymous    = "anonymous"
	RoleClient       = "client"
	RoleProfessional = "professional"
)

// Account represents an authenticated actor: a client seeking help or a
// verified professional offering it. Professional-only fields stay zero
// for clients.
type Account struct {
	gorm.Model

	AccountID    string `json:"account_id" gorm:"uniqueIndex"`
	Email        string `json:"email" gorm:"uniqueIndex"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`

	// PendingSelection holds a serialized HandoffDraft while a hand-off
	// is suspended for authentication. Cleared only by explicit
	// resumption or cancellation, never by the login itself.
	PendingSelection string `json:"-"`

	// Professional profile
	Specialty  string  `json:"specialty,omitempty"`
	City       string  `json:"city,omitempty"`
	BarNumber  string  `json:"bar_number,omitempty"`
	Bio        string  `json:"bio,omitempty"`
	Verified   bool    `json:"verified" gorm:"default:false"`
	Available  bool    `json:"available" gorm:"default:true"`
	Rating     float64 `json:"rating" gorm:"default:5.0"`
	CasesTaken int     `json:"cases_taken" gorm:"default:0"`

	LastActiveAt *time.Time `json:"last_active_at,omitempty"`
}

// BeforeCreate hook to auto-generate AccountID and normalize data
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.AccountID == "" {
		prefix := "CL"
		if a.Role == RoleProfessional {
			prefix = "PR"
		}
		a.AccountID = fmt.Sprintf("%s%d%03d", prefix, time.Now().Unix(), time.Now().Nanosecond()%1000)
	}

	a.Email = strings.ToLower(strings.TrimSpace(a.Email))

	if a.Rating == 0 {
		a.Rating = 5.0
	}

	return nil
}

// IsProfessional reports whether the account belongs to a professional.
func (a *Account) IsProfessional() bool {
	return a.Role == RoleProfessional
}

// RecordCase updates the professional's counters after a completed case.
func (a *Account) RecordCase(rating float64) {
	a.CasesTaken++
	if a.CasesTaken == 1 {
		a.Rating = rating
	} else {
		a.Rating = ((a.Rating * float64(a.CasesTaken-1)) + rating) / float64(a.CasesTaken)
	}
}

// Registration is the payload for creating a new account.
type Registration struct {
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Role      string `json:"role"`
	Specialty string `json:"specialty"`
	City      string `json:"city"`
	BarNumber string `json:"bar_number"`
}

// ProfessionalSearch holds directory search criteria. Ranking beyond
// rating order is delegated to the scoring service upstream.
type ProfessionalSearch struct {
	Specialty  string `json:"specialty"`
	City       string `json:"city"`
	SearchTerm string `json:"q"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
}
