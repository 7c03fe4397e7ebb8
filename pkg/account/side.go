package account

import (
	"fmt"
	"time"

	"github.com/aretw0/nestcache/pkg/cache"
)

// SessionMergeKey identifies sleep sessions inside a side's session list.
const SessionMergeKey = "day"

// Scoped keys of a side.
const (
	KeySessions        = "sessions"
	KeyCurrentSession  = "currentSession"
	KeyPreviousSession = "previousSession"
)

// Status is the per-side device state written by IngestDevice.
type Status struct {
	TargetHeatingLevel int    `mapstructure:"targetHeatingLevel"`
	HeatingLevel       int    `mapstructure:"heatingLevel"`
	HeatingDuration    int    `mapstructure:"heatingDuration"`
	NowHeating         bool   `mapstructure:"nowHeating"`
	PresenceEnd        string `mapstructure:"presenceEnd"`
}

// Side is one side of the device, scoped to the user sleeping on it.
type Side struct {
	name   string
	userID string
	view   *cache.ScopedView
}

func newSide(store *cache.Store, name, userID string) (*Side, error) {
	view, err := cache.NewScopedView(store, userID)
	if err != nil {
		return nil, fmt.Errorf("account: %s side: %w", name, err)
	}
	return &Side{name: name, userID: userID, view: view}, nil
}

// Name returns "left" or "right".
func (s *Side) Name() string { return s.name }

// UserID returns the user id the side is scoped to.
func (s *Side) UserID() string { return s.userID }

// View returns the scoped view of the side.
func (s *Side) View() *cache.ScopedView { return s.view }

// Status decodes the side's device state. The zero Status is returned when
// nothing was ingested yet.
func (s *Side) Status() (Status, error) {
	var st Status
	if _, err := cache.Decode(s.view.Store(), s.userID, &st); err != nil {
		return Status{}, err
	}
	return st, nil
}

// IsHeating reports the side's "nowHeating" flag.
func (s *Side) IsHeating() (bool, error) {
	v, err := s.view.ScopedGet("nowHeating")
	if err != nil {
		return false, err
	}
	on, _ := v.(bool)
	return on, nil
}

// MergeSessions upserts sleep sessions by day into the side's session list.
func (s *Side) MergeSessions(sessions []any) error {
	return s.view.ScopedMerge(KeySessions, sessions, SessionMergeKey)
}

// SessionFor returns the session of the given day, or the current session
// when day is empty. It returns nil when there is none.
func (s *Side) SessionFor(day string) (map[string]any, error) {
	if day == "" {
		return s.sessionAt(KeyCurrentSession)
	}

	v, err := s.view.ScopedGet(KeySessions)
	if err != nil {
		return nil, err
	}
	list, _ := v.([]any)
	for _, el := range list {
		m, ok := el.(map[string]any)
		if ok && m[SessionMergeKey] == day {
			return m, nil
		}
	}
	return nil, nil
}

// PreviousSession returns the last finished session, or nil.
func (s *Side) PreviousSession() (map[string]any, error) {
	return s.sessionAt(KeyPreviousSession)
}

func (s *Side) sessionAt(key string) (map[string]any, error) {
	v, err := s.view.ScopedGet(key)
	if err != nil {
		return nil, err
	}
	m, _ := v.(map[string]any)
	return m, nil
}

// IngestIntervals records sleep intervals ordered newest first. While the side
// is heating the newest interval is merged into the current session and the
// one before it into the previous session. Otherwise the current session is
// cleared and the newest interval becomes the previous one. All intervals are
// then upserted into the session list by day, derived from "ts" when missing.
func (s *Side) IngestIntervals(intervals []any) error {
	if len(intervals) == 0 {
		return nil
	}
	sessions := make([]any, len(intervals))
	for i, iv := range intervals {
		sessions[i] = withDay(iv)
	}

	heating, err := s.IsHeating()
	if err != nil {
		return err
	}

	var previous any
	if heating {
		if err := s.mergeSession(KeyCurrentSession, sessions[0]); err != nil {
			return err
		}
		if len(sessions) > 1 {
			previous = sessions[1]
		}
	} else {
		if err := s.view.ScopedPut(KeyCurrentSession, nil); err != nil {
			return err
		}
		previous = sessions[0]
	}
	if previous != nil {
		if err := s.mergeSession(KeyPreviousSession, previous); err != nil {
			return err
		}
	}
	return s.MergeSessions(sessions)
}

// IngestTrends records daily trends ordered oldest first. The latest trend is
// merged into the current or previous session when one of them has the same
// day, and every trend is upserted into the session list.
func (s *Side) IngestTrends(days []any) error {
	if len(days) == 0 {
		return nil
	}
	latest, ok := days[len(days)-1].(map[string]any)
	if day, _ := latest[SessionMergeKey].(string); ok && day != "" {
		for _, key := range []string{KeyCurrentSession, KeyPreviousSession} {
			sess, err := s.sessionAt(key)
			if err != nil {
				return err
			}
			if sess[SessionMergeKey] != day {
				continue
			}
			if err := s.mergeSession(key, latest); err != nil {
				return err
			}
			break
		}
	}
	return s.MergeSessions(days)
}

// mergeSession object-merges a copy of session into key, so the slot never
// shares a mapping with the session list.
func (s *Side) mergeSession(key string, session any) error {
	if m, ok := session.(map[string]any); ok {
		session = copyFields(m)
	}
	if err := s.view.ScopedMerge(key, session, ""); err != nil {
		return fmt.Errorf("account: %s side %s: %w", s.name, key, err)
	}
	return nil
}

// withDay returns a copy of a session mapping with its UTC day filled in from
// the RFC 3339 "ts" field. Other values are returned unchanged.
func withDay(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := copyFields(m)
	if _, ok := out[SessionMergeKey]; ok {
		return out
	}
	if ts, ok := out["ts"].(string); ok {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			out[SessionMergeKey] = t.UTC().Format(time.DateOnly)
		}
	}
	return out
}

func copyFields(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
