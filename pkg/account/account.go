package account

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/nestcache/internal/logging"
	"github.com/aretw0/nestcache/pkg/cache"
	"github.com/aretw0/nestcache/pkg/domain"
)

// Global keys written by an Account.
const (
	KeyTimezone       = "tz"
	KeyToken          = "token"
	KeyLoggedInUserID = "loggedInUserId"
	KeyDeviceID       = "deviceId"
	KeyUserIDs        = "userIds"
)

// Side names, in the order of the userIds sequence.
const (
	SideLeft  = "left"
	SideRight = "right"
)

// Token is the credential stored under KeyToken.
type Token struct {
	Token          string `mapstructure:"token"`
	ExpirationDate string `mapstructure:"expirationDate"`
}

// Session describes an authenticated account and its device.
type Session struct {
	Token       Token  `mapstructure:"token"`
	UserID      string `mapstructure:"userId"`
	DeviceID    string `mapstructure:"deviceId"`
	LeftUserID  string `mapstructure:"leftUserId"`
	RightUserID string `mapstructure:"rightUserId"`
}

func (s Session) validate() error {
	var missing []string
	if s.UserID == "" {
		missing = append(missing, "userId")
	}
	if s.DeviceID == "" {
		missing = append(missing, "deviceId")
	}
	if s.LeftUserID == "" {
		missing = append(missing, "leftUserId")
	}
	if s.RightUserID == "" {
		missing = append(missing, "rightUserId")
	}
	if len(missing) > 0 {
		return fmt.Errorf("account: session is missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Account binds the global keys of a store and hands out one scoped view
// per side of the device. Sides are unavailable until Bind succeeds.
type Account struct {
	store  *cache.Store
	logger *slog.Logger

	mu    sync.RWMutex
	left  *Side
	right *Side
	me    *Side
}

// Option configures the Account.
type Option func(*Account)

// WithLogger configures a logger for the Account.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Account) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an unauthenticated Account over store and records tz.
func New(store *cache.Store, tz string, opts ...Option) (*Account, error) {
	if store == nil {
		return nil, errors.New("account: store is required")
	}
	a := &Account{
		store:  store,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := store.Put(KeyTimezone, tz); err != nil {
		return nil, err
	}
	return a, nil
}

// Store returns the backing store.
func (a *Account) Store() *cache.Store {
	return a.store
}

// Bind records the session globals and creates the side views.
// The logged-in user gets the side whose user id matches, else the right one.
func (a *Account) Bind(s Session) error {
	if err := s.validate(); err != nil {
		return err
	}

	token, err := cache.Encode(s.Token)
	if err != nil {
		return err
	}

	writes := []struct {
		key   string
		value any
	}{
		{KeyToken, token},
		{KeyLoggedInUserID, s.UserID},
		{KeyDeviceID, s.DeviceID},
		{KeyUserIDs, []any{s.LeftUserID, s.RightUserID}},
	}
	for _, w := range writes {
		if err := a.store.Put(w.key, w.value); err != nil {
			return fmt.Errorf("account: bind %s: %w", w.key, err)
		}
	}

	left, err := newSide(a.store, SideLeft, s.LeftUserID)
	if err != nil {
		return err
	}
	right, err := newSide(a.store, SideRight, s.RightUserID)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.left, a.right = left, right
	if s.LeftUserID == s.UserID {
		a.me = left
	} else {
		a.me = right
	}
	me := a.me.name
	a.mu.Unlock()

	a.logger.Info("Account Bound", "device_id", s.DeviceID, "me", me)
	return nil
}

func (a *Account) side(pick func() *Side) (*Side, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := pick()
	if s == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return s, nil
}

// Left returns the left side view.
func (a *Account) Left() (*Side, error) {
	return a.side(func() *Side { return a.left })
}

// Right returns the right side view.
func (a *Account) Right() (*Side, error) {
	return a.side(func() *Side { return a.right })
}

// Me returns the side of the logged-in user.
func (a *Account) Me() (*Side, error) {
	return a.side(func() *Side { return a.me })
}

// Timezone returns the recorded timezone, or "" if none is stored.
func (a *Account) Timezone() string {
	v, _ := a.store.Get(KeyTimezone)
	tz, _ := v.(string)
	return tz
}

// IngestDevice splits a device status payload into its left and right halves
// and object-merges each half under the user id of that side. A side's
// "userId" field (from "leftUserId"/"rightUserId") wins over the bound id.
func (a *Account) IngestDevice(result map[string]any) error {
	a.mu.RLock()
	left, right := a.left, a.right
	a.mu.RUnlock()
	if left == nil || right == nil {
		return domain.ErrNotAuthenticated
	}

	halves := SplitSides(result)
	for _, s := range []*Side{left, right} {
		values := halves[s.name]
		if len(values) == 0 {
			continue
		}
		userID := s.userID
		if id, ok := values["userId"].(string); ok && id != "" {
			userID = id
		}
		if err := a.store.Merge(userID, values, ""); err != nil {
			return fmt.Errorf("account: ingest %s side: %w", s.name, err)
		}
	}
	return nil
}

// SplitSides groups the keys of a device payload by their side prefix,
// removing the prefix and lowering the next letter: "leftHeatingLevel"
// becomes "heatingLevel" in the "left" mapping. Keys with no side prefix, or
// nothing after it, are ignored. Both sides are always present in the result.
func SplitSides(result map[string]any) map[string]map[string]any {
	out := map[string]map[string]any{
		SideLeft:  {},
		SideRight: {},
	}
	for key, value := range result {
		for _, side := range []string{SideLeft, SideRight} {
			rest, ok := strings.CutPrefix(key, side)
			if !ok || rest == "" {
				continue
			}
			out[side][lowerFirst(rest)] = value
		}
	}
	return out
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
