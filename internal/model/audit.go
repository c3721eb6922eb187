package model

import "time"

// AccessMethod names how a download request was resolved.
type AccessMethod string

const (
	AccessByToken AccessMethod = "token"
	AccessByID    AccessMethod = "id"
	AccessByPath  AccessMethod = "path"
	AccessByAdmin AccessMethod = "admin"
)

// AnonymousAccessor is recorded when a download carries no session.
const AnonymousAccessor = "anonymous"

// ShareRecord is written when a share link is issued. TokenHash lets the
// download gate find the grant without storing the bearer token itself.
type ShareRecord struct {
	ID         string     `json:"id"`
	DocumentID string     `json:"document_id"`
	IssuerID   string     `json:"issuer_id"`
	TokenHash  string     `json:"-"`
	IssuedAt   time.Time  `json:"issued_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Revoked reports whether the grant was revoked.
func (r ShareRecord) Revoked() bool {
	return r.RevokedAt != nil
}

// AccessRecord is an append-only entry for every download attempt.
type AccessRecord struct {
	ID         string       `json:"id"`
	DocumentID string       `json:"document_id,omitempty"`
	Accessor   string       `json:"accessor"`
	Path       string       `json:"path"`
	Method     AccessMethod `json:"method"`
	Outcome    string       `json:"outcome"`
	CreatedAt  time.Time    `json:"created_at"`
}
