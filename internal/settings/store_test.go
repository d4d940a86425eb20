package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyStoreReturnsDefaults(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	s, err := db.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	in := SyncSettings{
		Credential:          "tok",
		Handle:              "jack",
		CachedUserID:        "12",
		IntervalMinutes:     30,
		MonthlyRequestCount: 4,
		LastResetPeriod:     "2025-5",
	}
	require.NoError(t, db.Save(ctx, in))

	out, err := db.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSaveIsUpsert(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	s := Default()
	s.MonthlyRequestCount = 1
	require.NoError(t, db.Save(ctx, s))
	s.MonthlyRequestCount = 2
	require.NoError(t, db.Save(ctx, s))

	out, err := db.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, out.MonthlyRequestCount)
}

func TestApplyConfigTrimsHandleAndClearsCacheOnChange(t *testing.T) {
	s := Default()
	s.Handle = "old"
	s.CachedUserID = "99"

	s.ApplyConfig("tok", "@jack", 15)

	assert.Equal(t, "jack", s.Handle)
	assert.Equal(t, "", s.CachedUserID, "handle change must invalidate the cached id")
	assert.Equal(t, "tok", s.Credential)
	assert.Equal(t, 15, s.IntervalMinutes)
}

func TestApplyConfigSameHandleKeepsCache(t *testing.T) {
	s := Default()
	s.Handle = "jack"
	s.CachedUserID = "12"

	s.ApplyConfig("", "jack", 0)

	assert.Equal(t, "12", s.CachedUserID)
	assert.Equal(t, Default().IntervalMinutes, s.IntervalMinutes)
}
