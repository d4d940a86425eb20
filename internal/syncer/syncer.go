package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"xsync/internal/identity"
	"xsync/internal/logging"
	"xsync/internal/markdown"
	"xsync/internal/metrics"
	"xsync/internal/quota"
	"xsync/internal/settings"
	"xsync/internal/vault"
	"xsync/internal/xclient"
)

// Outcome classifies how a sync pass ended.
type Outcome string

const (
	OutcomeSynced             Outcome = "synced"
	OutcomeBusy               Outcome = "busy"
	OutcomeUnconfigured       Outcome = "unconfigured"
	OutcomeQuotaExhausted     Outcome = "quota_exhausted"
	OutcomeIdentityNotFound   Outcome = "identity_not_found"
	OutcomeRateLimited        Outcome = "rate_limited"
	OutcomeAPIError           Outcome = "api_error"
	OutcomeEmptyResponse      Outcome = "empty_response"
	OutcomeFetchFailed        Outcome = "fetch_failed"
	OutcomePersistenceFailure Outcome = "persistence_failure"
)

// Report is the single result of one sync pass.
type Report struct {
	Outcome  Outcome
	NewPosts int
	Used     int // monthly reads used, after this pass
	Cap      int
	Err      error
}

// Status renders the short operator-facing status string.
func (r Report) Status() string {
	switch r.Outcome {
	case OutcomeSynced:
		return fmt.Sprintf("synced %d new (%d/%d reads)", r.NewPosts, r.Used, r.Cap)
	case OutcomeBusy:
		return "sync already in progress"
	case OutcomeUnconfigured:
		return "unconfigured"
	case OutcomeQuotaExhausted:
		return fmt.Sprintf("monthly quota exhausted (%d/%d reads)", r.Used, r.Cap)
	default:
		if r.Err != nil {
			return string(r.Outcome) + ": " + r.Err.Error()
		}
		return string(r.Outcome)
	}
}

// Syncer runs single sync passes: quota gate, identity resolution, one fetch,
// then idempotent per-post persistence. Passes never overlap; a concurrent
// trigger reports Busy without touching any state, so a manual trigger racing
// the scheduled one cannot double-count quota.
type Syncer struct {
	client   xclient.Client
	resolver *identity.Resolver
	store    settings.Store
	vault    *vault.Vault
	inflight *semaphore.Weighted
	now      func() time.Time
}

func New(client xclient.Client, store settings.Store, v *vault.Vault) *Syncer {
	return &Syncer{
		client:   client,
		resolver: identity.NewResolver(client),
		store:    store,
		vault:    v,
		inflight: semaphore.NewWeighted(1),
		now:      time.Now,
	}
}

// Run executes one pass. Every failure is caught and classified into the
// Report; nothing escapes to the host. Mutations that succeeded before a
// later failure (quota increment, cached id, written files) are kept so
// repeated passes make monotonic progress.
func (s *Syncer) Run(ctx context.Context) Report {
	if !s.inflight.TryAcquire(1) {
		return Report{Outcome: OutcomeBusy, Cap: quota.MonthlyReadCap}
	}
	defer s.inflight.Release(1)

	st, err := s.store.Load(ctx)
	if err != nil {
		return s.fail(OutcomePersistenceFailure, err, st.MonthlyRequestCount)
	}

	// Unconfigured is a silent no-op: no network calls, no quota mutation.
	if st.Credential == "" || st.Handle == "" {
		return Report{Outcome: OutcomeUnconfigured, Used: st.MonthlyRequestCount, Cap: quota.MonthlyReadCap}
	}

	// The reset check runs before the budget check on every pass, even when
	// no network call will happen.
	if quota.CheckAndMaybeReset(&st, s.now().UTC()) {
		if err := s.store.Save(ctx, st); err != nil {
			return s.fail(OutcomePersistenceFailure, err, st.MonthlyRequestCount)
		}
	}
	if !quota.HasBudget(&st) {
		return Report{Outcome: OutcomeQuotaExhausted, Used: st.MonthlyRequestCount, Cap: quota.MonthlyReadCap}
	}

	if st.CachedUserID == "" {
		id, err := s.resolver.Resolve(ctx, st.Handle, st.Credential)
		if err != nil {
			return s.fail(OutcomeIdentityNotFound, err, st.MonthlyRequestCount)
		}
		st.CachedUserID = id
		if err := s.store.Save(ctx, st); err != nil {
			return s.fail(OutcomePersistenceFailure, err, st.MonthlyRequestCount)
		}
	}

	posts, err := s.client.FetchPosts(ctx, st.CachedUserID, st.Credential)
	if err != nil {
		return s.fail(classifyFetch(err), err, st.MonthlyRequestCount)
	}
	// Record usage before writing any file so a crash mid-write cannot
	// under-count relative to the remote service's own limit.
	quota.RecordUsage(&st)
	if err := s.store.Save(ctx, st); err != nil {
		return s.fail(OutcomePersistenceFailure, err, st.MonthlyRequestCount)
	}

	rep := Report{Outcome: OutcomeSynced, Used: st.MonthlyRequestCount, Cap: quota.MonthlyReadCap}
	for _, p := range posts {
		rel := vault.PostPath(p)
		ok, err := s.vault.Exists(rel)
		if err != nil {
			return s.failKeeping(rep, err)
		}
		if ok {
			continue
		}
		if err := s.vault.Write(rel, markdown.Render(p)); err != nil {
			return s.failKeeping(rep, err)
		}
		rep.NewPosts++
	}
	logging.Info("sync_pass", map[string]any{
		"new_posts": rep.NewPosts,
		"fetched":   len(posts),
		"used":      rep.Used,
	})
	return rep
}

func (s *Syncer) fail(o Outcome, err error, used int) Report {
	metrics.IncSyncError(string(o))
	logging.Error("sync_pass_failed", map[string]any{"outcome": string(o), "error": err.Error()})
	return Report{Outcome: o, Err: err, Used: used, Cap: quota.MonthlyReadCap}
}

// failKeeping reports a persistence failure while keeping the partial writes
// counted so far; they are deliberately not rolled back.
func (s *Syncer) failKeeping(rep Report, err error) Report {
	metrics.IncSyncError(string(OutcomePersistenceFailure))
	logging.Error("sync_pass_failed", map[string]any{
		"outcome":   string(OutcomePersistenceFailure),
		"error":     err.Error(),
		"new_posts": rep.NewPosts,
	})
	rep.Outcome = OutcomePersistenceFailure
	rep.Err = err
	return rep
}

func classifyFetch(err error) Outcome {
	var apiErr *xclient.APIError
	switch {
	case xclient.IsRateLimited(err):
		return OutcomeRateLimited
	case errors.As(err, &apiErr):
		return OutcomeAPIError
	case errors.Is(err, xclient.ErrEmptyResponse):
		return OutcomeEmptyResponse
	default:
		return OutcomeFetchFailed
	}
}
