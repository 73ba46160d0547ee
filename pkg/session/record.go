package session

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tier identifies where a record lives.
type Tier string

const (
	// TierEphemeral records live as long as the tab.
	TierEphemeral Tier = "ephemeral"
	// TierPersistent records survive restarts until their absolute expiry.
	TierPersistent Tier = "persistent"
)

func (t Tier) String() string {
	return string(t)
}

// Identity describes the signed-in user.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

func (i Identity) validate() error {
	if strings.TrimSpace(i.Email) == "" {
		return ErrInvalidIdentity
	}
	return nil
}

// Record is the stored session envelope.
type Record struct {
	ID               uuid.UUID `json:"id"`
	Identity         Identity  `json:"identity"`
	Token            string    `json:"token"`
	IssuedAt         time.Time `json:"issued_at"`
	LastActivityAt   time.Time `json:"last_activity_at"`
	Tier             Tier      `json:"tier"`
	AbsoluteExpiryAt time.Time `json:"absolute_expiry_at,omitzero"`
}

// IdleFor returns how long the record has gone without activity at now.
func (r *Record) IdleFor(now time.Time) time.Duration {
	return now.Sub(r.LastActivityAt)
}

// Expired reports whether the record passed its absolute expiry.
// Ephemeral records have none.
func (r *Record) Expired(now time.Time) bool {
	if r.Tier != TierPersistent {
		return false
	}
	return !now.Before(r.AbsoluteExpiryAt)
}

// Valid reports whether the record is usable at now under the given
// inactivity timeout.
func (r *Record) Valid(now time.Time, inactivity time.Duration) bool {
	return r.IdleFor(now) < inactivity && !r.Expired(now)
}

func encodeRecord(r *Record) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeRecord(raw string) (*Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, errors.Join(ErrCorruptRecord, err)
	}
	if r.ID == uuid.Nil || r.LastActivityAt.IsZero() || r.Identity.validate() != nil {
		return nil, ErrCorruptRecord
	}
	return &r, nil
}
