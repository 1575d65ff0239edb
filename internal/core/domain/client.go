package domain

import (
	"errors"
	"strings"
	"time"
)

// LoginStatus models whether the external login surface has issued a session
// for the client. Stored as 0/1 for interop with existing exported data.
type LoginStatus int

const (
	LoggedOut LoginStatus = 0
	LoggedIn  LoginStatus = 1
)

func (s LoginStatus) String() string {
	if s == LoggedIn {
		return "Logged In"
	}
	return "Logged Out"
}

var ErrValidation = errors.New("validation failed")
var ErrClientNotFound = errors.New("client not found")
var ErrStore = errors.New("directory store unavailable")
var ErrNotify = errors.New("notification failed")

// ClientRecord is one grantee's access entry. The bson field names are an
// external contract shared with previously exported data; do not rename them.
type ClientRecord struct {
	// ID is the email local-part and doubles as the login name. Immutable
	// once assigned. Two distinct emails sharing a local-part collide and
	// the later write overwrites the earlier one (upsert semantics).
	ID              string         `json:"username" bson:"_id"`
	Email           string         `json:"email" bson:"email"`
	Name            string         `json:"name,omitempty" bson:"name,omitempty"`
	Password        string         `json:"password" bson:"password"`
	Permissions     []string       `json:"permissions" bson:"permissions"`
	ExpiryDate      string         `json:"expiry_date" bson:"expiry_date"`
	LoginStatus     LoginStatus    `json:"login_status" bson:"login_status"`
	CreatedAt       time.Time      `json:"created_at" bson:"created_at"`
	AccessGrantedAt time.Time      `json:"access_granted_at" bson:"access_granted_at"`
	PurchaseDate    time.Time      `json:"purchase_date" bson:"purchase_date"`
	LastUpdated     time.Time      `json:"last_updated,omitempty" bson:"last_updated,omitempty"`
	EditLogs        []EditLogEntry `json:"edit_logs,omitempty" bson:"edit_logs,omitempty"`
}

// expiryDateLayout is the day-granularity format expiry dates are stored in.
const expiryDateLayout = "2006-01-02"

// UsernameFromEmail derives the record id: the substring before the first '@'.
// An email without '@' derives to itself.
func UsernameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}

// Expired reports whether the record's expiry date lies strictly before the
// calendar day of now. Advisory only: nothing in the directory flips state
// automatically when a record expires.
func (c *ClientRecord) Expired(now time.Time) bool {
	expiry, err := time.Parse(expiryDateLayout, c.ExpiryDate)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return expiry.Before(today)
}

// LastChange returns the most recent audit entry, or nil when the record has
// never been edited. Consumers that only show the latest change use this; the
// full EditLogs sequence is never truncated.
func (c *ClientRecord) LastChange() *EditLogEntry {
	if len(c.EditLogs) == 0 {
		return nil
	}
	return &c.EditLogs[len(c.EditLogs)-1]
}
