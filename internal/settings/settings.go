package settings

import (
	"context"
	"strings"
)

// SyncSettings is the process-wide persisted state of the sync engine.
// Credential, Handle and IntervalMinutes are operator-owned and seeded from
// config at startup; CachedUserID, MonthlyRequestCount and LastResetPeriod
// are mutated by the quota tracker and the identity caching step, and saved
// after every mutation.
type SyncSettings struct {
	Credential          string
	Handle              string // without the leading "@"
	CachedUserID        string // "" = unresolved
	IntervalMinutes     int
	MonthlyRequestCount int
	LastResetPeriod     string // calendar-month token, see quota.PeriodToken
}

// Default returns the settings used when nothing has been persisted yet.
func Default() SyncSettings {
	return SyncSettings{IntervalMinutes: 60}
}

// ApplyConfig seeds the operator-owned fields from configuration. A handle
// change invalidates the cached user id so the next pass re-resolves it.
func (s *SyncSettings) ApplyConfig(credential, handle string, intervalMinutes int) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle != "" && handle != s.Handle {
		s.Handle = handle
		s.CachedUserID = ""
	}
	if credential != "" {
		s.Credential = credential
	}
	if intervalMinutes > 0 {
		s.IntervalMinutes = intervalMinutes
	}
}

// Store persists SyncSettings across restarts. Load merges whatever was
// stored over Default(); Save is at-least-once, called after every mutation.
type Store interface {
	Load(ctx context.Context) (SyncSettings, error)
	Save(ctx context.Context, s SyncSettings) error
}
