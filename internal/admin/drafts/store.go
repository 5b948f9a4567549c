// Package drafts persists in-progress product composers between requests.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/products"
)

// NewDraftKey names the draft of the create flow within a session.
const NewDraftKey = "new"

const (
	defaultTTL     = 12 * time.Hour
	defaultLockTTL = 2 * time.Minute
)

var (
	// ErrNotFound indicates there is no stored draft for the key.
	ErrNotFound = errors.New("drafts: not found")
	// ErrBusy indicates another request holds the submission lock.
	ErrBusy = errors.New("drafts: draft is being submitted")
)

// Key identifies one draft owned by one editing session.
type Key struct {
	Session string
	Draft   string
}

// String renders the key for storage.
func (k Key) String() string {
	return k.Session + ":" + k.Draft
}

// Validate ensures both parts are present.
func (k Key) Validate() error {
	if strings.TrimSpace(k.Session) == "" || strings.TrimSpace(k.Draft) == "" {
		return fmt.Errorf("drafts: invalid key %q", k.String())
	}
	return nil
}

// Store loads and saves composers. Implementations store snapshots, so a
// loaded composer never aliases stored state.
type Store interface {
	Load(ctx context.Context, key Key) (*products.Composer, error)
	Save(ctx context.Context, key Key, c *products.Composer) error
	Delete(ctx context.Context, key Key) error
	// DeleteSession discards every draft owned by a session.
	DeleteSession(ctx context.Context, session string) error
	// Acquire takes the submission lock for a draft. The returned release
	// function must be called once the submission finished.
	Acquire(ctx context.Context, key Key) (release func(), err error)
}

func encode(c *products.Composer) ([]byte, error) {
	if c == nil {
		return nil, errors.New("drafts: nil composer")
	}
	snapshot := *c
	// The submitting phase lives only as long as the request holding the lock.
	if snapshot.Phase == products.PhaseSubmitting {
		snapshot.Phase = products.PhaseEditing
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("drafts: encode: %w", err)
	}
	return raw, nil
}

func decode(raw []byte) (*products.Composer, error) {
	var c products.Composer
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("drafts: decode: %w", err)
	}
	return &c, nil
}
