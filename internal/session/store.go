package session

import (
	"context"
	"encoding/json"
	"time"

	"paygate/internal/model"
)

// recordTTL bounds how long a persisted session record may outlive its last
// write. The bearer token inside expires much sooner; this only keeps
// abandoned records from accumulating.
const recordTTL = 7 * 24 * time.Hour

// Record is the persisted pairing of bearer token and user profile. It is
// written and deleted as one unit so no reader ever observes a token without
// its profile or vice versa.
type Record struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Store persists at most one session record for one browser session.
//
// Load returns both halves or neither: a missing or unparseable record reads
// as absent, and a corrupt record is deleted on read. Clear is
// idempotent. Implementations have no network or scheduling side effects
// beyond their own backend.
type Store interface {
	Save(ctx context.Context, token string, user model.User) error
	Load(ctx context.Context) (token string, user *model.User, ok bool)
	Clear(ctx context.Context) error
}

func encodeRecord(token string, user model.User) ([]byte, error) {
	return json.Marshal(Record{Token: token, User: user})
}

func decodeRecord(raw []byte) (string, *model.User, bool) {
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", nil, false
	}
	if rec.Token == "" {
		return "", nil, false
	}
	return rec.Token, &rec.User, true
}
