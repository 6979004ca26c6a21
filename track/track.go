// Package track makes deep mutation of a state tree observable.
//
// Go has no property interception, so the write surface is an explicit
// cursor: reads of structured children return child cursors, and
// Cursor.Set is the only way to mutate. Each Set updates the underlying
// tree in place with a defensive deep clone of the assigned value and
// emits one (path, value) mutation record through the recorder's write
// callback. The recorder never applies records itself; whether a record
// is applied immediately or queued is the owner's decision.
package track

import (
	"errors"
	"fmt"

	"github.com/syogandev/go-observable/clone"
	"github.com/syogandev/go-observable/debug"
	"github.com/syogandev/go-observable/path"
)

var (
	// ErrNoSuchIndex reports an array element write outside the array's
	// current bounds.
	ErrNoSuchIndex = errors.New("no such array index")
	// ErrNotContainer reports a write attempted through a cursor whose
	// underlying value is not an object or array.
	ErrNotContainer = errors.New("not a container value")
)

// WriteFunc receives one mutation record per intercepted write: the full
// path of the written key, an independent deep clone of the assigned
// value, and the previous underlying value at that key. The returned
// error propagates to the Set caller.
type WriteFunc func(p path.Path, value, prev any) error

// Recorder owns the wrapper cache for one container and fans intercepted
// writes out to its owner. It must not be shared across containers.
type Recorder struct {
	onWrite WriteFunc
	cache   *cache
}

func NewRecorder(onWrite WriteFunc) *Recorder {
	return &Recorder{onWrite: onWrite, cache: newCache()}
}

// Wrap returns the cursor for node at the given path, reusing the cached
// cursor when node has been wrapped before. Wrapping a non-container
// value returns nil.
func (r *Recorder) Wrap(node any, at path.Path) *Cursor {
	id, ok := identity(node)
	if !ok {
		return nil
	}
	if id != 0 {
		if cur, ok := r.cache.get(id); ok {
			return cur
		}
	}
	cur := &Cursor{rec: r, node: node, path: at}
	if id != 0 {
		r.cache.put(id, cur)
	}
	if debug.Track() {
		debug.Logf("track: wrap %T at %q\n", node, at)
	}
	return cur
}

// Reset discards the entire wrapper cache. Called on root replacement:
// every path below the old root is meaningless afterwards, so stale
// cursors must not be returned.
func (r *Recorder) Reset() {
	r.cache.reset()
}

// Cursor is the interception wrapper over one underlying object or
// array. It is behaviorally transparent for leaf reads and returns
// wrapped children for structured reads.
type Cursor struct {
	rec  *Recorder
	node any
	path path.Path
}

// Path returns the cursor's location in the tree, root first.
func (c *Cursor) Path() path.Path {
	return c.path
}

// Get reads the value under key. Structured children come back wrapped
// as a *Cursor; leaves come back as plain values. The second result is
// false when the key is absent.
func (c *Cursor) Get(key string) (any, bool) {
	v, ok := c.child(key)
	if !ok {
		return nil, false
	}
	if isContainer(v) {
		return c.rec.Wrap(v, c.path.Child(key)), true
	}
	return v, true
}

// Field returns the wrapped structured child under key, or nil when the
// key is absent or its value is a leaf.
func (c *Cursor) Field(key string) *Cursor {
	v, ok := c.child(key)
	if !ok || !isContainer(v) {
		return nil
	}
	return c.rec.Wrap(v, c.path.Child(key))
}

// Set assigns value under key. The underlying tree is updated in place
// with a deep clone of value, then the write callback fires with a
// second, independent clone, then Set returns. Mutating value after Set
// returns cannot affect recorded state.
//
// On an object any key may be assigned; on an array the key must be an
// in-bounds index. Growing an array is done by assigning the whole array
// to its parent key.
func (c *Cursor) Set(key string, value any) error {
	stored, err := clone.Value(value)
	if err != nil {
		return err
	}
	var prev any
	switch n := c.node.(type) {
	case map[string]any:
		prev = n[key]
		n[key] = stored
	case []any:
		idx, ok := index(key, len(n))
		if !ok {
			return fmt.Errorf("%w: %q (len %d)", ErrNoSuchIndex, key, len(n))
		}
		prev = n[idx]
		n[idx] = stored
	default:
		return fmt.Errorf("%w: %T", ErrNotContainer, c.node)
	}
	if isContainer(prev) {
		if id, ok := identity(prev); ok && id != 0 {
			c.rec.cache.drop(id)
		}
	}
	recorded, err := clone.Value(stored)
	if err != nil {
		return err
	}
	p := c.path.Child(key)
	if debug.Track() {
		debug.Logf("track: set %q\n", p)
	}
	return c.rec.onWrite(p, recorded, prev)
}

func (c *Cursor) child(key string) (any, bool) {
	switch n := c.node.(type) {
	case map[string]any:
		v, ok := n[key]
		return v, ok
	case []any:
		idx, ok := index(key, len(n))
		if !ok {
			return nil, false
		}
		return n[idx], true
	default:
		return nil, false
	}
}

func index(key string, n int) (int, bool) {
	idx := 0
	if key == "" {
		return 0, false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		idx = idx*10 + int(c-'0')
		if idx > n {
			return 0, false
		}
	}
	if idx >= n {
		return 0, false
	}
	return idx, true
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}
