package models

import "strings"

// Role defines the actor classes in the system
type Role string

const (
	RoleUser    Role = "USER"
	RoleAdmin   Role = "ADMIN"
	RoleDriver  Role = "DRIVER"
	RoleKitchen Role = "KITCHEN"
	RoleManager Role = "MANAGER"
)

// NormalizeRole uppercases a role string at the boundary where it enters
// the system (login response or stored snapshot). Downstream code compares
// against the Role constants and never re-normalizes. Unknown or empty
// input normalizes to RoleUser.
func NormalizeRole(raw string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleDriver:
		return RoleDriver
	case RoleKitchen:
		return RoleKitchen
	case RoleManager:
		return RoleManager
	default:
		return RoleUser
	}
}

// Identity is the authenticated customer/staff profile. It is exclusively
// owned by the session manager; the persistent store only ever holds a
// serialized copy for reconciliation after a restart.
type Identity struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Role         Role   `json:"role"`
	SessionToken string `json:"-"`
	// PasswordHash is set only on locally-registered fallback profiles,
	// never on identities returned by the identity service.
	PasswordHash string `json:"password_hash,omitempty"`
	// Local marks a profile created by the offline registration fallback.
	Local bool `json:"local,omitempty"`
}

// DriverIdentity is the delivery-driver profile. Drivers authenticate
// through an independent credential channel and are not an Identity with
// Role DRIVER; the two personas live under separate persisted keys.
type DriverIdentity struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	Phone        string `json:"phone,omitempty"`
	Vehicle      string `json:"vehicle,omitempty"`
	SessionToken string `json:"-"`
}

// SessionState tracks how the current identity was established.
type SessionState string

const (
	// StateAnonymous: no identity in memory and none persisted.
	StateAnonymous SessionState = "ANONYMOUS"
	// StateAuthenticated: identity confirmed by the identity service.
	StateAuthenticated SessionState = "AUTHENTICATED"
	// StateRestoredUnverified: identity populated optimistically from the
	// persisted snapshot on startup, not yet validated against the server.
	StateRestoredUnverified SessionState = "RESTORED_UNVERIFIED"
	// StateRestoreFailed: a persisted snapshot exists but could not be
	// used (malformed, or its token already expired). The raw entry is
	// kept so a transient failure does not sign the user out.
	StateRestoreFailed SessionState = "RESTORE_FAILED"
)
