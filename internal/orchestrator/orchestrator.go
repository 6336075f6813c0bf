// Package orchestrator is the single entry point of the translation
// pipeline. It owns the engine registry, decides which adapter serves a
// request, applies the one-alternate fallback policy, fans independent
// segments out to a bounded worker pool, and aggregates quality flags onto
// the final result.
package orchestrator

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/termtran/termtran/internal/detector"
	"github.com/termtran/termtran/internal/engine"
	"github.com/termtran/termtran/internal/normalize"
	"github.com/termtran/termtran/internal/pipeline"
	"github.com/termtran/termtran/internal/segment"
	"github.com/termtran/termtran/internal/terminology"
)

// AllEnginesError is the terminal failure of one translation unit: the
// primary attempt and the single fallback attempt, both named.
type AllEnginesError struct {
	First  error
	Second error
}

func (e *AllEnginesError) Error() string {
	if e.Second == nil {
		return fmt.Sprintf("all engines failed: %v (no alternate engine available)", e.First)
	}
	return fmt.Sprintf("all engines failed: %v; fallback: %v", e.First, e.Second)
}

func (e *AllEnginesError) Unwrap() error { return e.First }

// minValidationRunes is the minimum result length for language-detector
// validation; shorter texts produce unreliable detections.
const minValidationRunes = 20

// Orchestrator coordinates adapters, terminology, segmentation and
// normalization for one session. The registry it owns is the only state
// shared across calls: descriptor mutations are serialized behind mu while
// reads may be concurrent.
type Orchestrator struct {
	mu       sync.RWMutex
	adapters map[string]engine.Adapter
	descs    map[string]*engine.Descriptor
	order    []string
	active   string

	session   Session
	settings  SettingsStore
	det       *detector.Detector
	probeOnce sync.Once

	log *logrus.Entry
}

// New builds an orchestrator over the given adapters. descriptors supplies
// per-engine timeouts, models and locality; entries missing from it get
// defaults. settings may be nil to disable persistence.
func New(adapters []engine.Adapter, descriptors []engine.Descriptor, session Session, settings SettingsStore) *Orchestrator {
	o := &Orchestrator{
		adapters: make(map[string]engine.Adapter, len(adapters)),
		descs:    make(map[string]*engine.Descriptor, len(adapters)),
		session:  session,
		settings: settings,
		det:      detector.New(),
		log:      logrus.WithField("component", "orchestrator"),
	}

	byID := make(map[string]engine.Descriptor, len(descriptors))
	for _, d := range descriptors {
		byID[d.ID] = d
	}

	for _, a := range adapters {
		o.adapters[a.ID()] = a
		d, ok := byID[a.ID()]
		if !ok {
			d = engine.Descriptor{ID: a.ID(), Timeouts: engine.DefaultTimeouts}
		}
		d.Capability = a.Capability()
		if d.Availability == "" {
			d.Availability = engine.AvailabilityUnknown
		}
		if d.Timeouts.Translate <= 0 {
			d.Timeouts.Translate = engine.DefaultTimeouts.Translate
		}
		if d.Timeouts.Connect <= 0 {
			d.Timeouts.Connect = engine.DefaultTimeouts.Connect
		}
		o.descs[a.ID()] = &d
	}

	o.order = o.initialOrder()

	if settings != nil {
		if id, err := settings.ActiveEngine(context.Background()); err == nil && id != "" {
			if _, ok := o.adapters[id]; ok {
				o.active = id
			}
		}
	}

	return o
}

func (o *Orchestrator) initialOrder() []string {
	var order []string
	seen := make(map[string]bool)
	for _, id := range o.session.PreferredOrder {
		if _, ok := o.adapters[id]; ok && !seen[id] {
			order = append(order, id)
			seen[id] = true
		}
	}
	// Registered engines missing from the preference list go to the back,
	// sorted for determinism.
	var rest []string
	for id := range o.adapters {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	for i := 0; i < len(rest); i++ {
		for j := i + 1; j < len(rest); j++ {
			if rest[j] < rest[i] {
				rest[i], rest[j] = rest[j], rest[i]
			}
		}
	}
	return append(order, rest...)
}

// ListEngines returns a snapshot of every configured engine descriptor in
// current priority order.
func (o *Orchestrator) ListEngines() []engine.Descriptor {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]engine.Descriptor, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, *o.descs[id])
	}
	return out
}

// SetActiveEngine pins an engine for subsequent calls in this session and
// persists the choice when a settings store is configured.
func (o *Orchestrator) SetActiveEngine(ctx context.Context, id string) error {
	o.mu.Lock()
	if _, ok := o.adapters[id]; !ok {
		o.mu.Unlock()
		return fmt.Errorf("unknown engine: %q", id)
	}
	o.active = id
	o.mu.Unlock()

	if o.settings != nil {
		if err := o.settings.SaveActiveEngine(ctx, id); err != nil {
			return fmt.Errorf("persist active engine: %w", err)
		}
	}
	return nil
}

// RefreshAvailability clears the cached probe results so the next call
// probes every engine again.
func (o *Orchestrator) RefreshAvailability() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, d := range o.descs {
		d.Availability = engine.AvailabilityUnknown
	}
}

// ProbeAll checks every engine's availability now and returns the updated
// descriptors in priority order.
func (o *Orchestrator) ProbeAll(ctx context.Context) []engine.Descriptor {
	o.mu.RLock()
	ids := make([]string, len(o.order))
	copy(ids, o.order)
	o.mu.RUnlock()

	for _, id := range ids {
		o.available(ctx, id)
	}
	return o.ListEngines()
}

// reorderByReachability runs once per session: when the external probe
// endpoint is unreachable, locally hosted engines move to the front.
func (o *Orchestrator) reorderByReachability() {
	o.probeOnce.Do(func() {
		conn, err := net.DialTimeout("tcp", o.session.probeEndpoint(), o.session.probeTimeout())
		if err == nil {
			conn.Close()
			return
		}
		o.log.WithError(err).Debug("external network unreachable, preferring local engines")

		o.mu.Lock()
		defer o.mu.Unlock()
		var local, remote []string
		for _, id := range o.order {
			if o.descs[id].Local {
				local = append(local, id)
			} else {
				remote = append(remote, id)
			}
		}
		o.order = append(local, remote...)
	})
}

// Translate runs one request through the full pipeline: segmentation,
// terminology substitution, the selected adapter with at most one fallback,
// normalization and reassembly. Callers receive either a result, possibly
// carrying advisory quality flags, or a single aggregated error.
func (o *Orchestrator) Translate(ctx context.Context, req pipeline.TranslationRequest) (*pipeline.TranslationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o.reorderByReachability()

	segs, style := segment.Split(req.Text)
	if segs == nil {
		unit, err := o.translateUnit(ctx, req, req.Text)
		if err != nil {
			return nil, err
		}
		result := &pipeline.TranslationResult{Text: unit.text, EngineUsed: unit.engineID}
		result.AddFlags(unit.flags...)
		return result, nil
	}

	return o.translateSegments(ctx, req, segs, style)
}

type unitOutcome struct {
	text     string
	engineID string
	flags    []pipeline.QualityFlag
}

type indexedOutcome struct {
	idx     int
	outcome unitOutcome
	err     error
}

// translateSegments fans segments out to a bounded worker pool and
// reassembles them in ordinal order. A failed or undispatched segment keeps
// its source text and raises SegmentUntranslated; reassembly never drops a
// slot.
func (o *Orchestrator) translateSegments(ctx context.Context, req pipeline.TranslationRequest, segs []segment.Segment, style *segment.Style) (*pipeline.TranslationResult, error) {
	workers := o.session.Workers
	if workers <= 0 {
		workers = len(o.adapters)
	}
	if workers < 1 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	results := make(chan indexedOutcome, len(segs))
	dispatched := 0

dispatch:
	for i, seg := range segs {
		// Cancellation is observed between dispatches: in-flight calls
		// finish, no new segment starts.
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}
		dispatched++
		go func(idx int, text string) {
			defer func() { <-sem }()
			outcome, err := o.translateUnit(ctx, req, text)
			results <- indexedOutcome{idx: idx, outcome: outcome, err: err}
		}(i, seg.Text)
	}

	translated := make([]segment.Segment, len(segs))
	for i, seg := range segs {
		translated[i] = segment.Segment{Ordinal: seg.Ordinal, Text: seg.Text}
	}

	result := &pipeline.TranslationResult{}
	succeeded := 0
	engineCounts := make(map[string]int)
	var firstErr error

	for n := 0; n < dispatched; n++ {
		r := <-results
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			result.AddFlags(pipeline.SegmentUntranslated)
			continue
		}
		translated[r.idx].Text = r.outcome.text
		engineCounts[r.outcome.engineID]++
		result.AddFlags(r.outcome.flags...)
		succeeded++
	}
	if dispatched < len(segs) {
		result.AddFlags(pipeline.SegmentUntranslated)
	}

	if succeeded == 0 {
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, ctx.Err()
	}

	// Majority engine wins; ties resolve by priority order so repeated runs
	// report the same engine.
	o.mu.RLock()
	order := make([]string, len(o.order))
	copy(order, o.order)
	o.mu.RUnlock()
	for _, id := range order {
		if n := engineCounts[id]; n > 0 && (result.EngineUsed == "" || n > engineCounts[result.EngineUsed]) {
			result.EngineUsed = id
		}
	}
	result.Text = segment.Join(translated, style)
	return result, nil
}

// translateUnit runs one translatable unit through substitution, the
// primary adapter, at most one fallback, normalization and marker
// restoration.
func (o *Orchestrator) translateUnit(ctx context.Context, req pipeline.TranslationRequest, text string) (unitOutcome, error) {
	primary, alternate, err := o.pickEngines(ctx, req.Engine)
	if err != nil {
		return unitOutcome{}, err
	}

	outcome, firstErr := o.attempt(ctx, primary, req, text)
	if firstErr == nil {
		return outcome, nil
	}

	if alternate == "" {
		return unitOutcome{}, &AllEnginesError{First: firstErr}
	}

	o.log.WithFields(logrus.Fields{
		"engine":   primary,
		"fallback": alternate,
	}).WithError(firstErr).Warn("engine failed, trying alternate")

	outcome, secondErr := o.attempt(ctx, alternate, req, text)
	if secondErr == nil {
		return outcome, nil
	}
	return unitOutcome{}, &AllEnginesError{First: firstErr, Second: secondErr}
}

// pickEngines returns the primary engine for this call and the single
// alternate the fallback policy may use. pinned may be empty.
func (o *Orchestrator) pickEngines(ctx context.Context, pinned string) (string, string, error) {
	o.mu.RLock()
	order := make([]string, len(o.order))
	copy(order, o.order)
	active := o.active
	o.mu.RUnlock()

	if pinned == "" {
		pinned = active
	}

	var candidates []string
	if pinned != "" {
		if _, ok := o.adapters[pinned]; !ok {
			return "", "", fmt.Errorf("unknown engine: %q", pinned)
		}
		candidates = append(candidates, pinned)
	}
	for _, id := range order {
		if id != pinned {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return "", "", fmt.Errorf("no engines configured")
	}

	var usable []string
	for _, id := range candidates {
		if o.available(ctx, id) {
			usable = append(usable, id)
		}
		if len(usable) == 2 {
			break
		}
	}
	switch len(usable) {
	case 0:
		// Nothing probed ready; try the configured order anyway so the
		// failure is a categorized adapter error, not a silent skip.
		if len(candidates) == 1 {
			return candidates[0], "", nil
		}
		return candidates[0], candidates[1], nil
	case 1:
		return usable[0], "", nil
	default:
		return usable[0], usable[1], nil
	}
}

// available returns the cached probe verdict for an engine, probing once
// with its own short timeout when unknown.
func (o *Orchestrator) available(ctx context.Context, id string) bool {
	o.mu.RLock()
	state := o.descs[id].Availability
	o.mu.RUnlock()

	if state != engine.AvailabilityUnknown {
		return state == engine.AvailabilityReady
	}

	probeCtx, cancel := context.WithTimeout(ctx, availabilityProbeTimeout)
	defer cancel()
	err := o.adapters[id].Probe(probeCtx)

	// A probe aborted by caller cancellation says nothing about the engine;
	// leave the cache unknown so the next call probes again.
	if err != nil && ctx.Err() != nil {
		return false
	}

	o.mu.Lock()
	if err != nil {
		o.descs[id].Availability = engine.AvailabilityUnavailable
	} else {
		o.descs[id].Availability = engine.AvailabilityReady
	}
	o.mu.Unlock()

	if err != nil {
		o.log.WithField("engine", id).WithError(err).Debug("availability probe failed")
	}
	return err == nil
}

// attempt performs a single adapter call for one unit, including
// terminology preparation for the adapter's capability, output cleanup,
// marker restoration and quality checks.
func (o *Orchestrator) attempt(ctx context.Context, id string, req pipeline.TranslationRequest, text string) (unitOutcome, error) {
	adapter := o.adapters[id]

	o.mu.RLock()
	timeouts := o.descs[id].Timeouts
	model := o.descs[id].Model
	o.mu.RUnlock()

	prepared, restore := terminology.Prepare(text, req.Terminology, adapter.Capability())

	engReq := engine.Request{
		Text:        prepared,
		SourceLang:  req.SourceLang,
		TargetLang:  req.TargetLang,
		StyleHint:   req.StyleHint,
		MarkerRules: restore.Rules(),
	}
	if adapter.Capability() == engine.DirectReplace {
		engReq.Glossary = req.Terminology
	}

	callCtx, cancel := context.WithTimeout(ctx, timeouts.Translate)
	defer cancel()

	raw, err := adapter.Translate(callCtx, model, engReq)
	if err != nil {
		return unitOutcome{}, err
	}

	nreq := normalize.Request{Source: text, SourceLang: req.SourceLang, TargetLang: req.TargetLang}
	clean := normalize.CleanOutput(raw, nreq)

	var flags []pipeline.QualityFlag
	if restore.Len() > 0 {
		var unresolved []int
		clean, unresolved = restore.Restore(clean)
		if len(unresolved) > 0 {
			// Recovery exhausted: flag, never swallow.
			flags = append(flags, pipeline.LeftoverPlaceholder)
		}
	}

	flags = append(flags, normalize.RunChecks(nreq, clean)...)
	flags = o.validateLanguage(req, clean, flags)

	return unitOutcome{text: clean, engineID: id, flags: flags}, nil
}

// validateLanguage complements the script heuristic with lingua detection,
// which also catches untranslated output for same-script language pairs.
// Advisory only.
func (o *Orchestrator) validateLanguage(req pipeline.TranslationRequest, text string, flags []pipeline.QualityFlag) []pipeline.QualityFlag {
	if len([]rune(text)) < minValidationRunes {
		return flags
	}
	detected, ok := o.det.DetectISO(text)
	if !ok {
		return flags
	}
	if strings.EqualFold(detected, string(req.SourceLang)) && req.SourceLang != req.TargetLang {
		for _, f := range flags {
			if f == pipeline.SourceUntranslated {
				return flags
			}
		}
		flags = append(flags, pipeline.SourceUntranslated)
	}
	return flags
}
