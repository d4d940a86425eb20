package identity

import (
	"context"
	"fmt"

	"xsync/internal/logging"
	"xsync/internal/xclient"
)

// NotFoundError means every resolution tier was exhausted for a handle.
type NotFoundError struct {
	Handle string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not resolve user id for handle %q", e.Handle)
}

// strategy is one resolution tier. A tier failure never propagates; it just
// moves resolution on to the next tier.
type strategy struct {
	name   string
	lookup func(ctx context.Context, handle string) (string, error)
}

// Resolver turns a handle into a durable numeric user id using an ordered
// list of tiers: the authenticated by-username endpoint when a credential is
// present, then the unauthenticated followbutton lookup. No retries within a
// resolve; the caller caches the result, so a failure is not retried until
// the cache is cleared (e.g. the configured handle changed).
type Resolver struct {
	client xclient.Client
}

func NewResolver(client xclient.Client) *Resolver {
	return &Resolver{client: client}
}

func (r *Resolver) Resolve(ctx context.Context, handle, credential string) (string, error) {
	var tiers []strategy
	if credential != "" {
		tiers = append(tiers, strategy{
			name: "by-username",
			lookup: func(ctx context.Context, h string) (string, error) {
				return r.client.LookupUserID(ctx, h, credential)
			},
		})
	}
	tiers = append(tiers, strategy{
		name:   "followbutton",
		lookup: r.client.FollowButtonLookup,
	})
	for _, t := range tiers {
		id, err := t.lookup(ctx, handle)
		if err == nil && id != "" {
			return id, nil
		}
		if err != nil {
			logging.Info("resolve_tier_failed", map[string]any{"tier": t.name, "handle": handle, "error": err.Error()})
		}
	}
	return "", &NotFoundError{Handle: handle}
}
