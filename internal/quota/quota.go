package quota

import (
	"fmt"
	"time"

	"xsync/internal/settings"
)

// MonthlyReadCap is the free-tier read budget per calendar month.
const MonthlyReadCap = 100

// PeriodToken identifies a calendar month. The month component is zero-based
// (June 2025 -> "2025-5") to stay comparable with tokens written by earlier
// deployments; tokens are opaque and only compared for equality.
func PeriodToken(now time.Time) string {
	return fmt.Sprintf("%d-%d", now.Year(), int(now.Month())-1)
}

// CheckAndMaybeReset rolls the counter over lazily on the first access in a
// new calendar month. Returns true when a reset happened so the caller can
// persist the settings. Run this before every budget check.
func CheckAndMaybeReset(s *settings.SyncSettings, now time.Time) bool {
	tok := PeriodToken(now)
	if s.LastResetPeriod == tok {
		return false
	}
	s.MonthlyRequestCount = 0
	s.LastResetPeriod = tok
	return true
}

// HasBudget reports whether one more read request fits in this month's cap.
func HasBudget(s *settings.SyncSettings) bool {
	return s.MonthlyRequestCount < MonthlyReadCap
}

// RecordUsage counts exactly one successful fetch call. Never called for
// failed or rate-limited calls, and never per post.
func RecordUsage(s *settings.SyncSettings) {
	s.MonthlyRequestCount++
}
