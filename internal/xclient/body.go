package xclient

import (
	"encoding/json"
	"fmt"
	"io"
)

// body is the one normalized response shape every call site consumes: the
// API inconsistently returns parsed JSON or raw text, so we tag it once here.
type body struct {
	parsed json.RawMessage // valid JSON, or nil
	raw    string          // kept for diagnostics when not valid JSON
}

func readBody(r io.Reader) (body, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return body{}, err
	}
	if len(b) == 0 || !json.Valid(b) {
		return body{raw: string(b)}, nil
	}
	return body{parsed: json.RawMessage(b)}, nil
}

func (b body) ok() bool { return len(b.parsed) > 0 }

func (b body) decode(v any) error {
	if !b.ok() {
		return fmt.Errorf("%w: %q", ErrEmptyResponse, truncate(b.raw, 120))
	}
	return json.Unmarshal(b.parsed, v)
}

// errorList is the {errors:[...]} envelope the API uses for application
// errors; v2 endpoints populate message or detail, some legacy ones title.
type errorList struct {
	Errors []struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Title   string `json:"title"`
	} `json:"errors"`
}

// apiErrors returns the joined API-reported errors, or nil when the body has
// no errors list (including when it is not an object at all).
func (b body) apiErrors() *APIError {
	if !b.ok() {
		return nil
	}
	var env errorList
	if err := json.Unmarshal(b.parsed, &env); err != nil || len(env.Errors) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(env.Errors))
	for _, e := range env.Errors {
		switch {
		case e.Message != "":
			msgs = append(msgs, e.Message)
		case e.Detail != "":
			msgs = append(msgs, e.Detail)
		default:
			msgs = append(msgs, e.Title)
		}
	}
	return &APIError{Messages: msgs}
}

// flexID tolerates both string and numeric id fields; the legacy
// followbutton endpoint returns numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
