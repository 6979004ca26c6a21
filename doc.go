// Package observable implements an observable mutation-tracking state
// container: state reads as a plain nested value, writes go through a
// cursor surface, and every accepted write produces a fresh immutable
// snapshot that shares all unchanged substructure with its predecessor.
// Rendering layers can therefore detect change with reference equality
// alone.
//
// # Model
//
// A container holds two trees. The shadow tree is freely mutable and is
// what the cursor surface writes into; it is wrapped behind a single
// {set: value} indirection so that replacing the whole state and
// replacing a field are the same kind of key write. The snapshot tree is
// the published value: it is never mutated, only replaced, by applying
// path-addressed mutation records with copy-on-write along each path.
//
// Every cursor write emits one (path, value) mutation record. In
// Immediate mode a record is applied at once; in Batching mode records
// queue until a flush (EnableBatch(false), Update, or the end of a Batch
// scope) applies them in order inside one transaction, publishing once.
// A whole-state write is never queued: it resets the wrapper cache and
// publishes immediately in either mode, and any records already queued
// still apply on the next flush, against the new root. Batch(fn) is
// atomic: if fn fails, the prior mode and queue are restored exactly and
// nothing fn wrote is applied.
//
// # Usage
//
//	s, err := observable.New(map[string]any{
//		"count": 0,
//		"user":  map[string]any{"name": "Ada"},
//	}, observable.WithNotify(func(snap any) { render(snap) }))
//	if err != nil {
//		...
//	}
//	s.Root().Field("user").Set("name", "Grace")
//	s.Set("count", 1)
//
// # Values
//
// Inputs are normalized by a deep clone into JSON-shaped data:
// map[string]any, []any, string, float64, bool, nil. Values that cannot
// be cloned (functions, channels, cycles, live handles) are rejected
// with clone.ErrNotCloneable and leave the container unchanged.
//
// # Limitations
//
// Arrays change through element writes only: cursor.Set("2", v) on an
// array cursor is one record, and growing or reordering an array is done
// by assigning the whole array to its parent key. There is no
// interception of in-place collection methods.
//
// A State is single-threaded: all operations run synchronously to
// completion on the calling goroutine, and a container must not be
// shared across goroutines.
package observable
