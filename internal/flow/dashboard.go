package flow

import (
	"log"
	"sync"
	"time"

	"github.com/lexlink/lexlink-backend/internal/apperr"
	"github.com/lexlink/lexlink-backend/internal/models"
)

// Dashboard keeps an actor's transfer list in sync by polling.
// Reconciliation is wholesale replacement with the server state, with
// no client-side merging, so concurrent acceptance or rejection by the
// counterpart can never leave a stale hybrid.
type Dashboard struct {
	backend  Backend
	identity *IdentityContext
	poller   *Poller

	mu          sync.RWMutex
	transfers   []*models.Transfer
	unreadCount int64
	lastErr     error
}

// NewDashboard creates a dashboard poller for the signed-in actor.
func NewDashboard(backend Backend, identity *IdentityContext, interval time.Duration) *Dashboard {
	d := &Dashboard{
		backend:  backend,
		identity: identity,
	}
	d.poller = NewPoller(interval, d.Refresh)
	return d
}

// Start begins polling; call when the dashboard view opens.
func (d *Dashboard) Start() {
	d.poller.Start()
}

// Stop halts polling; call when the view is torn down.
func (d *Dashboard) Stop() {
	d.poller.Stop()
}

// Refresh fetches the current transfer set and unread notification
// count. A transient failure skips the cycle; the next tick tries
// again. An expired token takes the identity's logout path.
func (d *Dashboard) Refresh() {
	token := d.identity.Token()
	if token == "" {
		return
	}

	transfers, err := d.backend.ListTransfers(token)
	if err != nil {
		d.recordError(err)
		return
	}

	unread, err := d.backend.UnreadNotificationCount(token)
	if err != nil {
		d.recordError(err)
		return
	}

	d.mu.Lock()
	d.transfers = transfers
	d.unreadCount = unread
	d.lastErr = nil
	d.mu.Unlock()
}

func (d *Dashboard) recordError(err error) {
	if apperr.IsAuthExpired(err) {
		d.identity.HandleAuthExpired()
		return
	}
	log.Printf("Dashboard refresh skipped: %v", err)
	d.mu.Lock()
	d.lastErr = err
	d.mu.Unlock()
}

// Transfers returns the last synced transfer set.
func (d *Dashboard) Transfers() []*models.Transfer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]*models.Transfer{}, d.transfers...)
}

// Transfer returns one synced transfer by ID.
func (d *Dashboard) Transfer(transferID string) (*models.Transfer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, t := range d.transfers {
		if t.TransferID == transferID {
			return t, true
		}
	}
	return nil, false
}

// UnreadNotifications returns the last synced unread count.
func (d *Dashboard) UnreadNotifications() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.unreadCount
}

// LastError returns the most recent skipped-cycle error, nil after a
// successful refresh.
func (d *Dashboard) LastError() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastErr
}

// Accept requests the accept transition and refreshes immediately so
// the local state reflects the server's answer.
func (d *Dashboard) Accept(transferID, response string, agreedTerms *string) (*models.Transfer, error) {
	transfer, err := d.backend.AcceptTransfer(d.identity.Token(), transferID, response, agreedTerms)
	if err != nil {
		return nil, err
	}
	d.Refresh()
	return transfer, nil
}

// Reject requests the reject transition.
func (d *Dashboard) Reject(transferID, response string) (*models.Transfer, error) {
	transfer, err := d.backend.RejectTransfer(d.identity.Token(), transferID, response)
	if err != nil {
		return nil, err
	}
	d.Refresh()
	return transfer, nil
}

// Cancel requests the cancel transition.
func (d *Dashboard) Cancel(transferID string) (*models.Transfer, error) {
	transfer, err := d.backend.CancelTransfer(d.identity.Token(), transferID)
	if err != nil {
		return nil, err
	}
	d.Refresh()
	return transfer, nil
}

// Complete requests the complete transition.
func (d *Dashboard) Complete(transferID string) (*models.Transfer, error) {
	transfer, err := d.backend.CompleteTransfer(d.identity.Token(), transferID)
	if err != nil {
		return nil, err
	}
	d.Refresh()
	return transfer, nil
}
