package xclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"xsync/internal/model"
)

// Client defines the X API calls the sync engine uses.
type Client interface {
	LookupUserID(ctx context.Context, handle, credential string) (string, error)
	FollowButtonLookup(ctx context.Context, handle string) (string, error)
	FetchPosts(ctx context.Context, userID, credential string) ([]model.Post, error)
}

// HTTPClient talks to the X API v2 with a bearer credential, plus the legacy
// unauthenticated followbutton lookup. It does client-side request smoothing
// but no automatic retries: rate limits and API errors surface to the caller,
// which decides policy.
type HTTPClient struct {
	baseURL     string
	fallbackURL string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

func NewHTTPClient() *HTTPClient {
	return &HTTPClient{
		baseURL:     "https://api.twitter.com/2",
		fallbackURL: "https://cdn.syndication.twimg.com/widgets",
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		limiter:     newDefaultLimiter(),
	}
}

func (c *HTTPClient) do(ctx context.Context, u, credential string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}
	req.Header.Set("Accept", "application/json")
	if err := c.limiter.Wait(ctx); err != nil { return nil, err }
	return c.httpClient.Do(req)
}

// LookupUserID resolves a handle through the authenticated by-username
// endpoint. Success requires a non-empty data.id.
func (c *HTTPClient) LookupUserID(ctx context.Context, handle, credential string) (string, error) {
	u := fmt.Sprintf("%s/users/by/username/%s", c.baseURL, url.PathEscape(handle))
	resp, err := c.do(ctx, u, credential)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", rateLimited(resp)
	}
	b, err := readBody(resp.Body)
	if err != nil {
		return "", err
	}
	if apiErr := b.apiErrors(); apiErr != nil {
		return "", apiErr
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("x api status %d", resp.StatusCode)
	}
	var raw struct {
		Data struct {
			ID flexID `json:"id"`
		} `json:"data"`
	}
	if err := b.decode(&raw); err != nil {
		return "", err
	}
	if raw.Data.ID == "" {
		return "", fmt.Errorf("no id in by-username response for %q", handle)
	}
	return string(raw.Data.ID), nil
}

type idRecord struct {
	ID flexID `json:"id"`
}

// FollowButtonLookup resolves a handle through the unauthenticated
// followbutton endpoint. The top-level JSON may be an array or a single
// object; a single object is treated as a one-element collection.
func (c *HTTPClient) FollowButtonLookup(ctx context.Context, handle string) (string, error) {
	u := fmt.Sprintf("%s/followbutton/info.json?screen_names=%s", c.fallbackURL, url.QueryEscape(handle))
	resp, err := c.do(ctx, u, "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("followbutton status %d", resp.StatusCode)
	}
	b, err := readBody(resp.Body)
	if err != nil {
		return "", err
	}
	if !b.ok() {
		return "", fmt.Errorf("%w: followbutton lookup for %q", ErrEmptyResponse, handle)
	}
	trimmed := bytes.TrimSpace(b.parsed)
	var records []idRecord
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return "", err
		}
	} else {
		var one idRecord
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return "", err
		}
		records = append(records, one)
	}
	if len(records) == 0 || records[0].ID == "" {
		return "", fmt.Errorf("no id in followbutton response for %q", handle)
	}
	return string(records[0].ID), nil
}

// FetchPosts lists up to 100 of the user's posts, excluding replies,
// requesting the fields the markdown rendering needs. Classification order:
// rate limiting, then API-reported errors, then the (possibly absent) data
// list. A user with zero qualifying posts is not an error.
func (c *HTTPClient) FetchPosts(ctx context.Context, userID, credential string) ([]model.Post, error) {
	u := fmt.Sprintf("%s/users/%s/tweets?max_results=100&exclude=replies&tweet.fields=created_at,referenced_tweets",
		c.baseURL, url.PathEscape(userID))
	resp, err := c.do(ctx, u, credential)
	if err != nil {
		if IsRateLimited(err) {
			return nil, &RateLimitedError{ResetAt: "unknown"}
		}
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, rateLimited(resp)
	}
	b, err := readBody(resp.Body)
	if err != nil {
		return nil, err
	}
	if apiErr := b.apiErrors(); apiErr != nil {
		return nil, apiErr
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("x api status %d", resp.StatusCode)
	}
	var raw struct {
		Data []struct {
			ID               string `json:"id"`
			Text             string `json:"text"`
			CreatedAt        string `json:"created_at"`
			ReferencedTweets []struct {
				Type string `json:"type"`
				ID   string `json:"id"`
			} `json:"referenced_tweets"`
		} `json:"data"`
	}
	if err := b.decode(&raw); err != nil {
		return nil, err
	}
	out := make([]model.Post, 0, len(raw.Data))
	for _, d := range raw.Data {
		p := model.Post{ID: d.ID, Text: d.Text, CreatedAt: d.CreatedAt}
		for _, r := range d.ReferencedTweets {
			p.References = append(p.References, model.Reference{ID: r.ID, Kind: r.Type})
		}
		out = append(out, p)
	}
	return out, nil
}

// rateLimited builds the typed error, translating the reset header into a
// human-readable time when present.
func rateLimited(resp *http.Response) *RateLimitedError {
	reset := "unknown"
	if v := resp.Header.Get("x-rate-limit-reset"); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			reset = time.Unix(secs, 0).UTC().Format(time.RFC1123)
		}
	}
	return &RateLimitedError{ResetAt: reset}
}
