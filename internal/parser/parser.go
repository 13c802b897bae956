// Package parser converts a single block of raw, loosely-structured text
// (optional markdown structural markers plus optional inline {...} translation
// annotations) into an ordered list of addressable segments suitable for
// storage, search, and multilingual rendering.
//
// The engine is a pure, synchronous computation: no I/O, no shared state,
// safe for concurrent use as long as the injected identifier generator is.
package parser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyOrigin is the engine's only hard failure: a blank format
// descriptor. Malformed content never raises an error, it degrades.
var ErrEmptyOrigin = errors.New("empty origin descriptor")

// IDFunc produces a fresh, collision-resistant identifier on every call.
type IDFunc func() string

// Engine is the segmentation facade: it parses the origin descriptor,
// dispatches to the matching strategy and applies the fallback policy.
type Engine struct {
	newID    IDFunc
	splitter SplitterConfig
}

// NewEngine creates an engine with the default splitter configuration.
func NewEngine(newID IDFunc) *Engine {
	return NewEngineWithConfig(newID, DefaultSplitterConfig())
}

// NewEngineWithConfig creates an engine with a custom splitter configuration.
func NewEngineWithConfig(newID IDFunc, cfg SplitterConfig) *Engine {
	return &Engine{newID: newID, splitter: cfg}
}

// Segment parses rawText under the given origin descriptor and returns the
// ordered segment list. It fails only on a blank descriptor; when the
// selected strategy yields nothing, a single fallback segment carrying the
// verbatim raw text is returned instead, so content is never silently lost.
func (e *Engine) Segment(rawText, descriptor string) ([]Segment, error) {
	if strings.TrimSpace(descriptor) == "" {
		return nil, fmt.Errorf("validate origin %q: %w", descriptor, ErrEmptyOrigin)
	}

	o := ParseOrigin(descriptor)
	if o.Primary == "" {
		return nil, fmt.Errorf("validate origin %q: missing primary language: %w", descriptor, ErrEmptyOrigin)
	}

	segs := e.runStrategy(rawText, o)
	if len(segs) == 0 {
		segs = []Segment{e.fallbackSegment(rawText, o)}
	}
	return segs, nil
}

// fallbackSegment wraps the entire unparsed input in one segment, trading
// structural fidelity for data-loss prevention.
func (e *Engine) fallbackSegment(rawText string, o Origin) Segment {
	value := TextValue(rawText)
	if o.Mode() == ModeBilingualPhrase {
		value = PhraseValue([]string{rawText})
	}
	return Segment{
		ID:    e.newID(),
		Order: 0,
		Block: LanguageBlock{o.Primary: value},
	}
}
