package model

// Reference points at another post this one relates to. Kind is an open set
// ("retweeted", "quoted", "replied_to", ...); only "retweeted" is acted on.
type Reference struct {
	ID   string
	Kind string
}

// Post is the subset of X post fields the sync engine uses: enough for the
// markdown rendering and for path-based deduplication. Immutable once fetched.
type Post struct {
	ID         string
	Text       string
	CreatedAt  string // ISO-8601, kept verbatim as returned by the API
	References []Reference
}

// RetweetedID returns the id of the first reference whose kind is exactly
// "retweeted", or "" when the post is not a retweet.
func (p Post) RetweetedID() string {
	for _, r := range p.References {
		if r.Kind == "retweeted" {
			return r.ID
		}
	}
	return ""
}
