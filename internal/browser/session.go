package browser

import (
	"context"
	"time"
)

// Element is one DOM node handed back from a lookup.
type Element interface {
	// HTML returns the node's outer HTML for fragment-level parsing.
	HTML() (string, error)
	Text() (string, error)
	// Attribute reports the attribute value and whether it is present.
	Attribute(name string) (string, bool)
	Click() error
	// ScriptClick clicks through the DOM API, bypassing overlay obstruction
	// checks a normal click would trip on.
	ScriptClick() error
}

// Session is the single controllable browser handle shared by category
// discovery and detail enrichment. It is used strictly sequentially; lookups
// report found/missing explicitly rather than erroring on absence.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// WaitFor blocks until the selector matches or the timeout elapses.
	WaitFor(selector string, timeout time.Duration) bool
	Find(selector string) (Element, bool)
	FindAll(selector string) []Element
	Evaluate(script string) (any, error)
	Close() error
}
