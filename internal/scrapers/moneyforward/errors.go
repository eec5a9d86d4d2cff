package moneyforward

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
)

var (
	// ErrLoginFailed is returned when the sign in round trip succeeded but did not
	// land on the authenticated home page, usually because of wrong credentials.
	ErrLoginFailed = errors.New("moneyforward: login failed")
	// ErrFetchTimeout is returned when the account refresh is still loading after
	// the maximum waiting time.
	ErrFetchTimeout = errors.New("moneyforward: account refresh did not finish in time")
	// ErrDataDoesNotExist is returned when a script response does not contain the
	// expected html fragment.
	ErrDataDoesNotExist = errors.New("moneyforward: response has no embedded data")
	// ErrTokenNotFound is returned when a page has no anti-forgery token.
	ErrTokenNotFound = errors.New("moneyforward: csrf token not found")

	ErrIncompleteCategory = errors.New("moneyforward: large and middle category must be given together")
	ErrInvalidAccounts    = errors.New("moneyforward: transfers need exactly two accounts, everything else exactly one")
)

// ConnectionError wraps a transport failure or an http error status.
type ConnectionError struct {
	Method string
	Url    string
	// Status is 0 when no response was received.
	Status int
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("moneyforward: %s %s: status %d: %s", e.Method, e.Url, e.Status, e.Err)
	}
	return fmt.Sprintf("moneyforward: %s %s: %s", e.Method, e.Url, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

type ResolutionKind string

const (
	ResolveAccount           ResolutionKind = "account"
	ResolveLargeCategory     ResolutionKind = "large category"
	ResolveMiddleCategory    ResolutionKind = "middle category"
	ResolvePartnerAccount    ResolutionKind = "partner account"
	ResolvePartnerSubAccount ResolutionKind = "partner sub account"
)

// ResolutionError is returned when a name given by the caller does not resolve to
// an id in freshly fetched data.
type ResolutionError struct {
	Kind ResolutionKind
	Name string
	// Reason is set when the name exists but still cannot be used.
	Reason string
	// Suggestions holds the most similar known names, most similar first.
	Suggestions []string
}

func (e *ResolutionError) Error() string {
	var out strings.Builder
	if e.Reason != "" {
		fmt.Fprintf(&out, "moneyforward: cannot use %s %q: %s", e.Kind, e.Name, e.Reason)
	} else {
		fmt.Fprintf(&out, "moneyforward: unknown %s %q", e.Kind, e.Name)
	}
	if len(e.Suggestions) > 0 {
		quoted := make([]string, len(e.Suggestions))
		for i, s := range e.Suggestions {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		fmt.Fprintf(&out, " (did you mean %s?)", strings.Join(quoted, ", "))
	}
	return out.String()
}

const (
	maxSuggestions      = 3
	suggestionThreshold = 0.7
)

func unresolved(kind ResolutionKind, name string, known []string) *ResolutionError {
	type scored struct {
		name  string
		score float64
	}

	var candidates []scored
	for _, k := range known {
		score := matchr.JaroWinkler(name, k, false)
		if score < suggestionThreshold {
			continue
		}
		candidates = append(candidates, scored{name: k, score: score})
	}
	slices.SortFunc(candidates, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return strings.Compare(a.name, b.name)
	})
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}

	suggestions := make([]string, len(candidates))
	for i, c := range candidates {
		suggestions[i] = c.name
	}
	return &ResolutionError{Kind: kind, Name: name, Suggestions: suggestions}
}
