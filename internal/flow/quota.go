package flow

import (
	"sync"

	"github.com/lexlink/lexlink-backend/internal/apperr"
)

// DefaultQuestionLimit is the anonymous question allowance.
const DefaultQuestionLimit = 5

// QuotaGuard tracks how many questions an anonymous visitor has asked.
// It is a local heuristic that shapes the UX, not a security control:
// the server still answers unauthenticated questions even if this
// state is wiped. Once the visitor authenticates, enforcement is
// bypassed for the rest of the session.
type QuotaGuard struct {
	mu            sync.Mutex
	count         int
	limit         int
	authenticated bool
}

// QuotaSnapshot is the serializable guard state. The embedder persists
// it so the count survives a reload within the same browser session.
type QuotaSnapshot struct {
	Count         int  `json:"count"`
	Limit         int  `json:"limit"`
	Authenticated bool `json:"authenticated"`
}

// NewQuotaGuard creates a guard with the given limit.
func NewQuotaGuard(limit int) *QuotaGuard {
	if limit <= 0 {
		limit = DefaultQuestionLimit
	}
	return &QuotaGuard{limit: limit}
}

// RestoreQuotaGuard rebuilds a guard from a persisted snapshot.
func RestoreQuotaGuard(snap QuotaSnapshot) *QuotaGuard {
	guard := NewQuotaGuard(snap.Limit)
	guard.count = snap.Count
	guard.authenticated = snap.Authenticated
	return guard
}

// CanProceed reports whether a new question may be dispatched. Must be
// evaluated strictly before dispatching.
func (g *QuotaGuard) CanProceed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authenticated || g.count < g.limit
}

// RecordUsage counts one question. Called only after the dispatch was
// accepted upstream, so a dropped request costs no quota. No-op once
// authenticated.
func (g *QuotaGuard) RecordUsage() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.authenticated {
		return
	}
	g.count++
}

// Reset zeroes the count. Called exactly once on the
// authentication-success transition.
func (g *QuotaGuard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.count = 0
}

// Count returns the recorded usage.
func (g *QuotaGuard) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.count
}

// Snapshot returns the serializable guard state.
func (g *QuotaGuard) Snapshot() QuotaSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return QuotaSnapshot{Count: g.count, Limit: g.limit, Authenticated: g.authenticated}
}

// BindIdentity resets the guard on the authentication-success
// transition and keeps the bypass for the rest of the session.
func (g *QuotaGuard) BindIdentity(identity *IdentityContext) {
	identity.Subscribe(func(actor Actor) {
		g.mu.Lock()
		defer g.mu.Unlock()
		if !actor.Anonymous() && !g.authenticated {
			g.authenticated = true
			g.count = 0
		}
	})
}

// Ask dispatches a question through the guard. CanProceed is checked
// before the network call; usage is recorded only after the responder
// accepted the question. A crash between the two loses at most one
// unit of quota, which is accepted.
func (g *QuotaGuard) Ask(backend Backend, identity *IdentityContext, guestToken, question string) (*QuestionReply, error) {
	if !g.CanProceed() {
		return nil, apperr.New(apperr.KindQuotaExceeded, "question limit reached, sign in to continue")
	}

	reply, err := backend.AskQuestion(identity.Token(), guestToken, question)
	if err != nil {
		return nil, err
	}

	g.RecordUsage()
	return reply, nil
}
