package xclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// helper to point a client at a test server on both bases
func newTestClient(ts *httptest.Server) *HTTPClient {
	c := NewHTTPClient()
	c.httpClient = ts.Client()
	c.baseURL = ts.URL
	c.fallbackURL = ts.URL
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

func TestFetchPosts429YieldsRateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-rate-limit-reset", "1750000000")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).FetchPosts(context.Background(), "12", "tok")
	require.Error(t, err)
	require.True(t, IsRateLimited(err))

	var rl *RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.NotEqual(t, "unknown", rl.ResetAt)
	assert.Contains(t, err.Error(), "100 reads/month")
}

func TestFetchPosts429WithoutResetHeader(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).FetchPosts(context.Background(), "12", "tok")
	var rl *RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, "unknown", rl.ResetAt)
}

func TestFetchPostsAPIErrorJoinsMessages(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"Invalid authentication credentials"}]}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts).FetchPosts(context.Background(), "12", "tok")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, err.Error(), "Invalid authentication credentials")
}

func TestFetchPostsEmptyBodyIsFatal(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 with no body at all
	}))
	defer ts.Close()

	_, err := newTestClient(ts).FetchPosts(context.Background(), "12", "tok")
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestFetchPostsMissingDataIsEmptyNotError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meta":{"result_count":0}}`))
	}))
	defer ts.Close()

	posts, err := newTestClient(ts).FetchPosts(context.Background(), "12", "tok")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestFetchPostsParsesReferences(t *testing.T) {
	var gotPath, gotAuth, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"data":[
			{"id":"111","text":"plain","created_at":"2025-06-05T08:00:00.000Z"},
			{"id":"222","text":"rt","created_at":"2025-06-05T09:00:00.000Z",
			 "referenced_tweets":[{"type":"quoted","id":"888"},{"type":"retweeted","id":"999"}]}
		]}`))
	}))
	defer ts.Close()

	posts, err := newTestClient(ts).FetchPosts(context.Background(), "12", "tok")
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "/users/12/tweets", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Contains(t, gotQuery, "max_results=100")
	assert.Contains(t, gotQuery, "exclude=replies")

	assert.Empty(t, posts[0].References)
	assert.Equal(t, "999", posts[1].RetweetedID())
}

func TestLookupUserID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/by/username/jack", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"id":"12","name":"jack"}}`))
	}))
	defer ts.Close()

	id, err := newTestClient(ts).LookupUserID(context.Background(), "jack", "tok")
	require.NoError(t, err)
	assert.Equal(t, "12", id)
}

func TestLookupUserIDMissingIDFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"name":"jack"}}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts).LookupUserID(context.Background(), "jack", "tok")
	require.Error(t, err)
}

func TestFollowButtonLookupArrayShape(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/followbutton/info.json", r.URL.Path)
		assert.Equal(t, "jack", r.URL.Query().Get("screen_names"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":12,"screen_name":"jack"}]`))
	}))
	defer ts.Close()

	id, err := newTestClient(ts).FollowButtonLookup(context.Background(), "jack")
	require.NoError(t, err)
	assert.Equal(t, "12", id, "numeric id must be stringified")
}

func TestFollowButtonLookupSingleObjectShape(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"34","screen_name":"jill"}`))
	}))
	defer ts.Close()

	id, err := newTestClient(ts).FollowButtonLookup(context.Background(), "jill")
	require.NoError(t, err)
	assert.Equal(t, "34", id)
}

func TestFollowButtonLookupMalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts).FollowButtonLookup(context.Background(), "jack")
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestIsRateLimitedMatchesEncodedStatus(t *testing.T) {
	assert.True(t, IsRateLimited(&RateLimitedError{ResetAt: "unknown"}))
	assert.True(t, IsRateLimited(errors.New("x api status 429")))
	assert.False(t, IsRateLimited(errors.New("connection refused")))
	assert.False(t, IsRateLimited(nil))
}
