package humastar

import (
	"fmt"
	"strings"
)

// Action is a state-dependent hypermedia action link.
// Response bodies implement the Actor interface to emit conditional
// RFC 8288 Link headers with method and title extension parameters.
//
//	</api/v1/markers/2/next>; rel="next"; method="POST"; title="Next photo"
type Action struct {
	Rel    string // IANA rel or custom (e.g., "next", "click")
	Href   string // target URL
	Method string // HTTP method: POST, PUT, DELETE, etc.
	Title  string // optional human-readable label
}

// Actor is implemented by response bodies that provide state-dependent actions.
type Actor interface {
	Actions() []Action
}

// LinkHeader formats the action as an RFC 8288 Link header value.
func (a Action) LinkHeader() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<%s>; rel="%s"`, a.Href, a.Rel)
	if a.Method != "" {
		fmt.Fprintf(&b, `; method="%s"`, a.Method)
	}
	if a.Title != "" {
		fmt.Fprintf(&b, `; title="%s"`, a.Title)
	}
	return b.String()
}

// ActionDef is a reusable action template for resources of type T.
// Pattern takes a single %s verb for the resource id. A nil Enabled means
// the action is always offered.
type ActionDef[T any] struct {
	Rel     string
	Pattern string
	Method  string
	Title   string
	Enabled func(T) bool
}

// ActionsFor returns the actions of defs enabled for v, addressed at id.
func ActionsFor[T any](id string, v T, defs []ActionDef[T]) []Action {
	var actions []Action
	for _, d := range defs {
		if d.Enabled != nil && !d.Enabled(v) {
			continue
		}
		actions = append(actions, Action{
			Rel:    d.Rel,
			Href:   fmt.Sprintf(d.Pattern, id),
			Method: d.Method,
			Title:  d.Title,
		})
	}
	return actions
}
