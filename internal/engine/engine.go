// Package engine defines the uniform contract every translation backend is
// wrapped behind, plus the concrete adapters. The orchestrator depends only
// on the Adapter interface; backend-specific request and response shapes
// never leave this package.
package engine

import (
	"context"
	"time"

	"github.com/termtran/termtran/internal/pipeline"
)

// Capability describes how an adapter honors terminology.
type Capability string

const (
	// DirectReplace means glossary terms are substituted into the text
	// before the call and the backend only translates the remainder.
	DirectReplace Capability = "direct_replace"

	// PlaceholderProtect means glossary terms are hidden behind markers the
	// backend is instructed to keep verbatim.
	PlaceholderProtect Capability = "placeholder_protect"
)

// Availability is the cached result of the last probe of an engine.
type Availability string

const (
	AvailabilityUnknown     Availability = "unknown"
	AvailabilityReady       Availability = "ready"
	AvailabilityUnavailable Availability = "unavailable"
)

// Timeouts separates the cheap connect/probe budget from the translation
// budget so a slow probe cannot starve a real call.
type Timeouts struct {
	Connect   time.Duration
	Translate time.Duration
}

// DefaultTimeouts used when the configuration leaves a value unset.
var DefaultTimeouts = Timeouts{
	Connect:   5 * time.Second,
	Translate: 60 * time.Second,
}

// Descriptor is the orchestrator-owned record of one configured engine.
// Adapters read it; only the orchestrator registry mutates it.
type Descriptor struct {
	ID           string
	Capability   Capability
	Timeouts     Timeouts
	Model        string
	Availability Availability
	Local        bool // reachable without external network (Ollama, intranet)
}

// MarkerRule instructs the backend how one protection marker must be
// rendered in the output.
type MarkerRule struct {
	Marker string
	Target string
}

// Request is the uniform payload an adapter turns into a backend call. Text
// has already been through terminology substitution.
type Request struct {
	Text        string
	SourceLang  pipeline.Lang
	TargetLang  pipeline.Lang
	StyleHint   string
	Glossary    []pipeline.GlossaryEntry
	MarkerRules []MarkerRule
}

// Adapter wraps one translation backend behind a uniform contract.
type Adapter interface {
	// ID is the stable engine identifier used in configuration and results.
	ID() string

	// Capability reports how this backend honors terminology.
	Capability() Capability

	// Translate performs one translation round-trip. model may be empty to
	// use the adapter default. Failures are returned as *Error with a
	// distinguishable Category.
	Translate(ctx context.Context, model string, req Request) (string, error)

	// Probe performs a cheap availability check. The caller bounds it with
	// a short-deadline context.
	Probe(ctx context.Context) error
}
