package models

import (
	"time"

	"gorm.io/gorm"
)

// GuestSession records anonymous question usage per guest token. It is
// a UX hint, not authorization: the question endpoint answers whether or
// not a guest session exists, and clearing the token simply starts a
// fresh count. The real gate lives client-side.
type GuestSession struct {
	gorm.Model

	Token         string    `json:"token" gorm:"uniqueIndex"`
	QuestionCount int       `json:"question_count" gorm:"default:0"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its TTL.
func (g *GuestSession) Expired() bool {
	return time.Now().After(g.ExpiresAt)
}
