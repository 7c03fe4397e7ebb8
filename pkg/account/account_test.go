package account_test

import (
	"testing"

	"github.com/aretw0/nestcache/pkg/account"
	"github.com/aretw0/nestcache/pkg/cache"
	"github.com/aretw0/nestcache/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() account.Session {
	return account.Session{
		Token:       account.Token{Token: "t-1", ExpirationDate: "2026-12-01T00:00:00Z"},
		UserID:      "u-right",
		DeviceID:    "d-1",
		LeftUserID:  "u-left",
		RightUserID: "u-right",
	}
}

func newBound(t *testing.T) (*account.Account, *cache.Store) {
	t.Helper()
	store := cache.New()
	acc, err := account.New(store, "America/New_York")
	require.NoError(t, err)
	require.NoError(t, acc.Bind(testSession()))
	return acc, store
}

func TestAccount_NotAuthenticated(t *testing.T) {
	store := cache.New()
	acc, err := account.New(store, "UTC")
	require.NoError(t, err)
	assert.Equal(t, "UTC", acc.Timezone())

	_, err = acc.Left()
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	_, err = acc.Right()
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	_, err = acc.Me()
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.ErrorIs(t, acc.IngestDevice(map[string]any{"leftHeatingLevel": 1}), domain.ErrNotAuthenticated)
}

func TestAccount_New_RequiresStore(t *testing.T) {
	_, err := account.New(nil, "UTC")
	assert.Error(t, err)
}

func TestAccount_Bind_WritesGlobals(t *testing.T) {
	_, store := newBound(t)

	var token account.Token
	found, err := cache.Decode(store, account.KeyToken, &token)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "t-1", token.Token)

	tests := map[string]any{
		"tz":             "America/New_York",
		"token.token":    "t-1",
		"loggedInUserId": "u-right",
		"deviceId":       "d-1",
		"userIds.0":      "u-left",
		"userIds.1":      "u-right",
		"userIds":        []any{"u-left", "u-right"},
	}
	for key, want := range tests {
		got, err := store.Get(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
	}
}

func TestAccount_Bind_Invalid(t *testing.T) {
	acc, err := account.New(cache.New(), "UTC")
	require.NoError(t, err)

	s := testSession()
	s.DeviceID = ""
	s.LeftUserID = ""
	err = acc.Bind(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deviceId, leftUserId")

	_, err = acc.Me()
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestAccount_MeSelection(t *testing.T) {
	acc, _ := newBound(t)
	me, err := acc.Me()
	require.NoError(t, err)
	assert.Equal(t, account.SideRight, me.Name())
	assert.Equal(t, "u-right", me.UserID())

	s := testSession()
	s.UserID = "u-left"
	other, err := account.New(cache.New(), "UTC")
	require.NoError(t, err)
	require.NoError(t, other.Bind(s))
	me, err = other.Me()
	require.NoError(t, err)
	assert.Equal(t, account.SideLeft, me.Name())
}

func TestAccount_SidesShareStore(t *testing.T) {
	acc, store := newBound(t)
	left, err := acc.Left()
	require.NoError(t, err)
	right, err := acc.Right()
	require.NoError(t, err)

	require.NoError(t, left.View().ScopedPut("targetHeatingLevel", -20))
	require.NoError(t, right.View().ScopedPut("targetHeatingLevel", 35))

	v, err := store.Get("u-left.targetHeatingLevel")
	require.NoError(t, err)
	assert.Equal(t, -20, v)
	v, err = store.Get("u-right.targetHeatingLevel")
	require.NoError(t, err)
	assert.Equal(t, 35, v)

	// Unscoped reads see the account globals.
	v, err = left.View().Get("deviceId")
	require.NoError(t, err)
	assert.Equal(t, "d-1", v)
}

func TestSplitSides(t *testing.T) {
	got := account.SplitSides(map[string]any{
		"leftHeatingLevel":        -10,
		"leftNowHeating":          true,
		"leftUserId":              "u-left",
		"rightTargetHeatingLevel": 20,
		"left":                    "ignored",
		"ledColor":                "ignored",
		"priming":                 false,
	})

	assert.Equal(t, map[string]map[string]any{
		"left": {
			"heatingLevel": -10,
			"nowHeating":   true,
			"userId":       "u-left",
		},
		"right": {
			"targetHeatingLevel": 20,
		},
	}, got)
}

func TestAccount_IngestDevice(t *testing.T) {
	acc, store := newBound(t)

	require.NoError(t, acc.IngestDevice(map[string]any{
		"leftHeatingLevel":       -10,
		"leftTargetHeatingLevel": -20,
		"leftNowHeating":         true,
		"leftPresenceEnd":        "2026-10-16T07:00:00Z",
		"rightHeatingLevel":      5,
		"rightNowHeating":        false,
		"rightUserId":            "u-right",
		"priming":                false,
	}))

	// A second payload overlays, keeping untouched fields.
	require.NoError(t, acc.IngestDevice(map[string]any{
		"leftHeatingLevel": -15,
	}))

	left, err := acc.Left()
	require.NoError(t, err)
	st, err := left.Status()
	require.NoError(t, err)
	assert.Equal(t, account.Status{
		TargetHeatingLevel: -20,
		HeatingLevel:       -15,
		NowHeating:         true,
		PresenceEnd:        "2026-10-16T07:00:00Z",
	}, st)

	heating, err := left.IsHeating()
	require.NoError(t, err)
	assert.True(t, heating)

	right, err := acc.Right()
	require.NoError(t, err)
	heating, err = right.IsHeating()
	require.NoError(t, err)
	assert.False(t, heating)

	v, err := store.Get("priming")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestAccount_IngestDevice_ShapeMismatch(t *testing.T) {
	acc, store := newBound(t)
	require.NoError(t, store.Put("u-left", "not a mapping"))

	err := acc.IngestDevice(map[string]any{"leftHeatingLevel": 1})
	assert.ErrorIs(t, err, domain.ErrMergeType)
}

func TestSide_Sessions(t *testing.T) {
	acc, _ := newBound(t)
	me, err := acc.Me()
	require.NoError(t, err)

	s, err := me.SessionFor("2026-10-15")
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, me.MergeSessions([]any{
		map[string]any{"day": "2026-10-15", "score": 80},
	}))
	require.NoError(t, me.MergeSessions([]any{
		map[string]any{"day": "2026-10-15", "sleepFitnessScore": 75},
		map[string]any{"day": "2026-10-16", "score": 90},
	}))

	s, err = me.SessionFor("2026-10-15")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"day": "2026-10-15", "score": 80, "sleepFitnessScore": 75}, s)

	s, err = me.SessionFor("2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, 90, s["score"])

	require.NoError(t, me.View().ScopedMerge(account.KeyCurrentSession, map[string]any{"day": "2026-10-17"}, ""))
	s, err = me.SessionFor("")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", s["day"])
}

func newIngested(t *testing.T) (left, right *account.Side) {
	t.Helper()
	acc, _ := newBound(t)
	require.NoError(t, acc.IngestDevice(map[string]any{
		"leftNowHeating":  true,
		"rightNowHeating": false,
	}))
	left, err := acc.Left()
	require.NoError(t, err)
	right, err = acc.Right()
	require.NoError(t, err)
	return left, right
}

func intervals() []any {
	return []any{
		map[string]any{"id": "i-2", "ts": "2026-10-16T23:30:00-04:00", "score": 0},
		map[string]any{"id": "i-1", "ts": "2026-10-15T22:00:00Z", "score": 81},
	}
}

func TestSide_IngestIntervals(t *testing.T) {
	left, right := newIngested(t)

	t.Run("Heating", func(t *testing.T) {
		require.NoError(t, left.IngestIntervals(intervals()))

		current, err := left.SessionFor("")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"id": "i-2", "ts": "2026-10-16T23:30:00-04:00", "score": 0, "day": "2026-10-17"}, current)

		previous, err := left.PreviousSession()
		require.NoError(t, err)
		assert.Equal(t, "i-1", previous["id"])
		assert.Equal(t, "2026-10-15", previous["day"])

		s, err := left.SessionFor("2026-10-15")
		require.NoError(t, err)
		assert.Equal(t, 81, s["score"])

		// A refresh upserts instead of appending.
		require.NoError(t, left.IngestIntervals(intervals()))
		list, err := left.View().ScopedGet(account.KeySessions)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("Not Heating", func(t *testing.T) {
		require.NoError(t, right.View().ScopedPut(account.KeyCurrentSession, map[string]any{"day": "2026-10-16"}))
		require.NoError(t, right.IngestIntervals(intervals()))

		current, err := right.SessionFor("")
		require.NoError(t, err)
		assert.Nil(t, current)

		previous, err := right.PreviousSession()
		require.NoError(t, err)
		assert.Equal(t, "i-2", previous["id"])
		assert.Equal(t, "2026-10-17", previous["day"])
	})

	t.Run("Slots Do Not Share The List Entries", func(t *testing.T) {
		require.NoError(t, left.MergeSessions([]any{map[string]any{"day": "2026-10-17", "extra": 1}}))

		current, err := left.SessionFor("")
		require.NoError(t, err)
		assert.NotContains(t, current, "extra")

		s, err := left.SessionFor("2026-10-17")
		require.NoError(t, err)
		assert.Equal(t, 1, s["extra"])
	})

	t.Run("Empty", func(t *testing.T) {
		assert.NoError(t, left.IngestIntervals(nil))
	})
}

func TestSide_IngestTrends(t *testing.T) {
	left, right := newIngested(t)
	require.NoError(t, left.IngestIntervals(intervals()))
	require.NoError(t, right.IngestIntervals(intervals()))

	// Latest trend matches the current session.
	require.NoError(t, left.IngestTrends([]any{
		map[string]any{"day": "2026-10-15", "sleepFitnessScore": 70},
		map[string]any{"day": "2026-10-17", "sleepFitnessScore": 88},
	}))
	current, err := left.SessionFor("")
	require.NoError(t, err)
	assert.Equal(t, 88, current["sleepFitnessScore"])
	assert.Equal(t, "i-2", current["id"])

	previous, err := left.PreviousSession()
	require.NoError(t, err)
	assert.NotContains(t, previous, "sleepFitnessScore")

	s, err := left.SessionFor("2026-10-15")
	require.NoError(t, err)
	assert.Equal(t, 70, s["sleepFitnessScore"])

	// Latest trend matches the previous session.
	require.NoError(t, right.IngestTrends([]any{
		map[string]any{"day": "2026-10-17", "sleepFitnessScore": 60},
	}))
	previous, err = right.PreviousSession()
	require.NoError(t, err)
	assert.Equal(t, 60, previous["sleepFitnessScore"])

	// No slot matches; only the list changes.
	require.NoError(t, right.IngestTrends([]any{
		map[string]any{"day": "2026-10-18", "sleepFitnessScore": 50},
	}))
	previous, err = right.PreviousSession()
	require.NoError(t, err)
	assert.Equal(t, 60, previous["sleepFitnessScore"])
	s, err = right.SessionFor("2026-10-18")
	require.NoError(t, err)
	assert.Equal(t, 50, s["sleepFitnessScore"])
}

func TestAccount_NilLoggerKeepsDefault(t *testing.T) {
	acc, err := account.New(cache.New(), "UTC", account.WithLogger(nil))
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		require.NoError(t, acc.Bind(testSession()))
	})
}
