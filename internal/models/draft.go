package models

import (
	"encoding/json"
	"strings"
)

// HandoffDraft is the in-progress selection and consent data for a
// hand-off. It is owned by the stepper while the flow runs, survives an
// authentication interruption as a serialized pending selection, and is
// transferred by value into a TransferSubmission on submit.
type HandoffDraft struct {
	SelectedProfessionalID string `json:"selected_professional_id"`
	TopicHint              string `json:"topic_hint,omitempty"`
	CaseSummary            string `json:"case_summary,omitempty"`
	ContactName            string `json:"contact_name"`
	ContactChannel         string `json:"contact_channel"`
	Availability           string `json:"availability"`

	// Consent checkboxes start explicitly unchecked; they govern what is
	// shared, not whether the request is sent.
	ShareHistory bool `json:"share_history"`
	ShareContact bool `json:"share_contact"`
}

// ConsentComplete reports whether the required consent-step fields are
// filled in.
func (d *HandoffDraft) ConsentComplete() bool {
	return strings.TrimSpace(d.ContactName) != "" && strings.TrimSpace(d.ContactChannel) != ""
}

// ClearConsent resets the consent-step fields. Re-confirmation is
// required after switching professionals.
func (d *HandoffDraft) ClearConsent() {
	d.ContactName = ""
	d.ContactChannel = ""
	d.Availability = ""
	d.ShareHistory = false
	d.ShareContact = false
}

// Submission converts the draft into a transfer payload.
func (d *HandoffDraft) Submission() TransferSubmission {
	return TransferSubmission{
		ProfessionalID: d.SelectedProfessionalID,
		CaseSummary:    d.CaseSummary,
		ContactName:    strings.TrimSpace(d.ContactName),
		ContactChannel: strings.TrimSpace(d.ContactChannel),
		Availability:   d.Availability,
		ShareHistory:   d.ShareHistory,
		ShareContact:   d.ShareContact,
	}
}

// Encode serializes the draft for storage on the account's pending
// selection.
func (d *HandoffDraft) Encode() (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeDraft parses a stored pending selection. Returns nil for an
// empty value.
func DecodeDraft(raw string) (*HandoffDraft, error) {
	if raw == "" {
		return nil, nil
	}
	var d HandoffDraft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, err
	}
	return &d, nil
}
