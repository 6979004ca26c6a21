package observable

import (
	"fmt"

	"github.com/syogandev/go-observable/clone"
	"github.com/syogandev/go-observable/debug"
	"github.com/syogandev/go-observable/path"
	"github.com/syogandev/go-observable/statediff"
	"github.com/syogandev/go-observable/track"
)

// rootKey is the single field of the shadow root. Writing it replaces
// the whole state; writing below it replaces a field. The indirection
// collapses both into ordinary key writes on one object.
const rootKey = "set"

// NotifyFunc receives each published snapshot, once per applied
// transaction.
type NotifyFunc func(snapshot any)

// ObserverFunc is the diagnostic collaborator: it fires synchronously on
// every intercepted write, before batching decisions, with the written
// path, the recorded value, and the previous underlying value. It is for
// logging and tracing only; prev may alias internal state and must not
// be retained or mutated.
type ObserverFunc func(p path.Path, value, prev any)

type options struct {
	batching bool
	notify   NotifyFunc
	observer ObserverFunc
}

type Option func(*options)

// WithBatching starts the container in batching mode.
func WithBatching(on bool) Option {
	return func(o *options) { o.batching = on }
}

// WithNotify installs the snapshot publication collaborator.
func WithNotify(fn NotifyFunc) Option {
	return func(o *options) { o.notify = fn }
}

// WithObserver installs the per-write diagnostic collaborator.
func WithObserver(fn ObserverFunc) Option {
	return func(o *options) { o.observer = fn }
}

// State is the observable state container: a published snapshot plus
// the control surface for writing it. The snapshot is immutable by
// convention, replaced and never mutated, so callers can rely on
// reference equality to detect unchanged subtrees.
//
// A State is private to one goroutine; it performs no locking.
type State struct {
	snapshot any
	shadow   map[string]any
	rec      *track.Recorder
	queue    []record
	batching bool
	notify   NotifyFunc
	observer ObserverFunc
	watches  []*watch
}

// New builds a container around a deep clone of initial. The caller's
// value is never aliased: mutating initial after New returns does not
// affect the container.
func New(initial any, opts ...Option) (*State, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	shadowVal, err := clone.Value(initial)
	if err != nil {
		return nil, err
	}
	// The snapshot gets its own clone. The shadow tree is mutated in
	// place on every write, so the two trees must share nothing.
	snapVal, err := clone.Value(initial)
	if err != nil {
		return nil, err
	}
	s := &State{
		snapshot: snapVal,
		shadow:   map[string]any{rootKey: shadowVal},
		batching: o.batching,
		notify:   o.notify,
		observer: o.observer,
	}
	s.rec = track.NewRecorder(s.onWrite)
	return s, nil
}

// Snapshot returns the current published state value. Callers must not
// mutate it.
func (s *State) Snapshot() any {
	return s.snapshot
}

// Root returns the write cursor over the state value, or nil when the
// state is a leaf (a leaf state has no fields; use Replace).
func (s *State) Root() *track.Cursor {
	return s.shadowCursor().Field(rootKey)
}

// Replace performs a whole-state write: the state becomes a deep clone
// of v. Root replacement is never queued; it resets the wrapper cache
// and publishes immediately even while batching. Records already queued
// stay queued and apply on the next flush against the new root.
func (s *State) Replace(v any) error {
	return s.shadowCursor().Set(rootKey, v)
}

// Set writes the value at a textual path, e.g. Set("user.name", "Ada").
// An empty path replaces the whole state. Intermediate segments must
// resolve to structured values.
func (s *State) Set(p string, v any) error {
	segs, err := path.Parse(p)
	if err != nil {
		return err
	}
	if segs.IsRoot() {
		return s.Replace(v)
	}
	cur := s.Root()
	if cur == nil {
		return fmt.Errorf("%w: state is not a container", ErrPatchPath)
	}
	for _, seg := range segs[:len(segs)-1] {
		cur = cur.Field(seg)
		if cur == nil {
			return fmt.Errorf("%w: missing segment %q in %q", ErrPatchPath, seg, p)
		}
	}
	return cur.Set(segs[len(segs)-1], v)
}

func (s *State) shadowCursor() *track.Cursor {
	return s.rec.Wrap(s.shadow, nil)
}

// onWrite is the recorder's write callback: one call per intercepted
// write, holding the record value (already an independent clone).
func (s *State) onWrite(p path.Path, value, prev any) error {
	stripped := p
	if len(stripped) > 0 && stripped[0] == rootKey {
		stripped = stripped[1:]
	}
	if s.observer != nil {
		s.observer(stripped, value, prev)
	}
	if stripped.IsRoot() {
		// Root replacement bypasses the queue in every mode. Queued
		// field records survive and apply on the next flush against
		// the new root.
		s.rec.Reset()
		s.publish(value)
		return nil
	}
	rec := record{path: stripped, value: value}
	if s.batching {
		s.queue = append(s.queue, rec)
		return nil
	}
	next, err := applyAll(s.snapshot, []record{rec})
	if err != nil {
		return err
	}
	s.publish(next)
	return nil
}

// publish replaces the snapshot and notifies collaborators, once per
// applied transaction.
func (s *State) publish(next any) {
	prev := s.snapshot
	s.snapshot = next
	if debug.Diff() {
		if txt, err := statediff.Diff(prev, next, false); err == nil {
			debug.Logf("observable: published\n%s", txt)
		}
	}
	if s.notify != nil {
		s.notify(next)
	}
	s.runWatches(next)
}
