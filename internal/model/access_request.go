package model

import "time"

// RequestStatus is the state of an access request. Approved and rejected are terminal.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

// AccessRequest asks a super admin to grant admin access to UserID.
type AccessRequest struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user_id"`
	Email      string        `json:"email,omitempty"`
	Name       string        `json:"name,omitempty"`
	Reason     string        `json:"reason"`
	Status     RequestStatus `json:"status"`
	ReviewedBy *string       `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time    `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}
