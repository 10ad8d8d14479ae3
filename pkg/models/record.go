// Package models contains shared data models used across the FailWatch codebase.
package models

import "time"

// Flow types recognized by the normalizer. Anything else found in a raw
// record is passed through verbatim.
const (
	FlowPublish = "Publish"
	FlowSignup  = "Signup"
	FlowInvite  = "Invite"
	FlowUpgrade = "Upgrade"
)

// FailureRecord is one observed failure event in canonical shape. Raw
// upstream records arrive with drifting field names; the normalize package
// reconciles them into this struct. Records are rebuilt fresh on every
// fetch cycle and never updated in place.
type FailureRecord struct {
	ID           string  `json:"id,omitempty"`
	Name         string  `json:"name"`
	TenantID     string  `json:"tenant_id"`
	OrgID        *string `json:"org_id,omitempty"`
	ThreadID     string  `json:"thread_id,omitempty"`
	RequestID    string  `json:"request_id,omitempty"`
	StatusCode   string  `json:"status_code,omitempty"`
	ServerName   string  `json:"server_name,omitempty"`
	Changeset    string  `json:"changeset,omitempty"`
	BuildID      string  `json:"build_id,omitempty"`
	FlowType     string  `json:"flow_type"`
	SourceModule string  `json:"source_module,omitempty"`

	CreatedAt   *time.Time `json:"created_at,omitempty"`
	RequestedAt *time.Time `json:"requested_at,omitempty"`

	ExceptionTrace  string `json:"exception_trace,omitempty"`
	ErrorMessage    string `json:"error_message,omitempty"`
	ExceptionReason string `json:"exception_reason,omitempty"`
}

// EffectiveTime returns the timestamp used for ordering: requestedAt,
// falling back to createdAt. Nil means the record carries no timestamp at
// all; callers must sort such records after any timestamped one.
func (r *FailureRecord) EffectiveTime() *time.Time {
	if r.RequestedAt != nil {
		return r.RequestedAt
	}
	return r.CreatedAt
}
