package flow

import (
	"log"
	"sync"

	"github.com/lexlink/lexlink-backend/internal/apperr"
	"github.com/lexlink/lexlink-backend/internal/models"
)

// Actor describes who is currently using the system.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Anonymous reports whether no one is signed in.
func (a Actor) Anonymous() bool {
	return a.Role == models.RoleAnonymous
}

// IdentityContext is the single authority over the credential token and
// actor role. Every mutation goes through it; a logout always wins over
// a concurrent in-flight login completion. The pending selection it
// carries is the suspended hand-off draft; authenticating never clears
// it, only explicit resumption or cancellation does.
type IdentityContext struct {
	backend Backend

	mu          sync.Mutex
	actor       Actor
	token       string
	epoch       uint64
	pending     *models.HandoffDraft
	subscribers []func(Actor)
}

// NewIdentityContext creates an anonymous identity context.
func NewIdentityContext(backend Backend) *IdentityContext {
	return &IdentityContext{
		backend: backend,
		actor:   Actor{Role: models.RoleAnonymous},
	}
}

// Actor returns the current actor.
func (ic *IdentityContext) Actor() Actor {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.actor
}

// Token returns the current credential token, empty when anonymous.
func (ic *IdentityContext) Token() string {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.token
}

// Subscribe registers a callback invoked after every identity change.
func (ic *IdentityContext) Subscribe(fn func(Actor)) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.subscribers = append(ic.subscribers, fn)
}

// Login exchanges credentials for a token. If a logout happened while
// the request was in flight the completion is discarded.
func (ic *IdentityContext) Login(email, password string) error {
	ic.mu.Lock()
	startEpoch := ic.epoch
	ic.mu.Unlock()

	result, err := ic.backend.Login(email, password)
	if err != nil {
		return err
	}
	return ic.applyAuth(result, startEpoch)
}

// Register creates an account and signs in. Same race rule as Login.
func (ic *IdentityContext) Register(reg *models.Registration) error {
	ic.mu.Lock()
	startEpoch := ic.epoch
	ic.mu.Unlock()

	result, err := ic.backend.Register(reg)
	if err != nil {
		return err
	}
	return ic.applyAuth(result, startEpoch)
}

func (ic *IdentityContext) applyAuth(result *AuthResult, startEpoch uint64) error {
	ic.mu.Lock()
	if ic.epoch != startEpoch {
		ic.mu.Unlock()
		return apperr.New(apperr.KindStateConflict, "sign-in discarded: signed out while it was in flight")
	}

	ic.token = result.Token
	ic.actor = Actor{
		ID:   result.Identity.AccountID,
		Name: result.Identity.Name,
		Role: result.Identity.Role,
	}

	// Push any suspended draft server-side so it survives a reload.
	// Best effort; the local copy remains authoritative for resumption.
	pending := ic.pending
	token := ic.token
	ic.mu.Unlock()

	if pending != nil {
		if err := ic.backend.SavePendingSelection(token, pending); err != nil {
			log.Printf("Failed to save pending selection: %v", err)
		}
	}

	ic.notify()
	return nil
}

// Logout reverts to anonymous. The epoch bump makes any concurrent
// login completion lose the race. The pending selection survives.
func (ic *IdentityContext) Logout() {
	ic.mu.Lock()
	ic.epoch++
	ic.token = ""
	ic.actor = Actor{Role: models.RoleAnonymous}
	ic.mu.Unlock()

	ic.notify()
}

// HandleAuthExpired is the token-expiry path: same as a logout, so a
// mid-flow actor keeps their pending selection and only has to sign in
// again.
func (ic *IdentityContext) HandleAuthExpired() {
	ic.Logout()
}

// PendingSelection returns the suspended draft, nil when none.
func (ic *IdentityContext) PendingSelection() *models.HandoffDraft {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	if ic.pending == nil {
		return nil
	}
	copied := *ic.pending
	return &copied
}

// SetPendingSelection attaches a suspended draft. Re-attaching an
// identical draft is a no-op, so suspension stays idempotent.
func (ic *IdentityContext) SetPendingSelection(draft *models.HandoffDraft) {
	if draft == nil {
		return
	}
	copied := *draft

	ic.mu.Lock()
	ic.pending = &copied
	token := ic.token
	ic.mu.Unlock()

	if token != "" {
		if err := ic.backend.SavePendingSelection(token, &copied); err != nil {
			log.Printf("Failed to save pending selection: %v", err)
		}
	}
}

// ClearPendingSelection removes the suspended draft after explicit
// resumption or cancellation.
func (ic *IdentityContext) ClearPendingSelection() {
	ic.mu.Lock()
	ic.pending = nil
	token := ic.token
	ic.mu.Unlock()

	if token != "" {
		if err := ic.backend.ClearPendingSelection(token); err != nil {
			log.Printf("Failed to clear pending selection: %v", err)
		}
	}
}

// Validate checks the stored token against the server and takes the
// expiry path when it is no longer live.
func (ic *IdentityContext) Validate() error {
	token := ic.Token()
	if token == "" {
		return nil
	}

	snapshot, err := ic.backend.Me(token)
	if err != nil {
		if apperr.IsAuthExpired(err) {
			ic.HandleAuthExpired()
		}
		return err
	}

	ic.mu.Lock()
	ic.actor = Actor{
		ID:   snapshot.Identity.AccountID,
		Name: snapshot.Identity.Name,
		Role: snapshot.Identity.Role,
	}
	if ic.pending == nil && snapshot.PendingSelection != nil {
		ic.pending = snapshot.PendingSelection
	}
	ic.mu.Unlock()
	return nil
}

func (ic *IdentityContext) notify() {
	ic.mu.Lock()
	actor := ic.actor
	subscribers := make([]func(Actor), len(ic.subscribers))
	copy(subscribers, ic.subscribers)
	ic.mu.Unlock()

	for _, fn := range subscribers {
		fn(actor)
	}
}
