package observable

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/syogandev/go-observable/debug"
	"github.com/syogandev/go-observable/path"
)

// record is one pending mutation: the path of the written key with the
// leading shadow-root segment already stripped, and an independent deep
// clone of the assigned value.
type record struct {
	path  path.Path
	value any
}

// applyAll applies records onto base in enqueue order and returns the
// resulting snapshot. Containers along each record's path are copied;
// everything off-path is shared with base, so unrelated subtrees keep
// reference equality across the transaction. Records are independent
// patches: overlapping paths are not merged, the later record simply
// overwrites in application order.
//
// applyAll never mutates base. On error the returned snapshot is nil and
// base is unchanged, so a failed transaction leaves the published
// snapshot exactly as it was.
func applyAll(base any, recs []record) (any, error) {
	next := base
	for i := range recs {
		rec := &recs[i]
		if debug.Patch() {
			debug.Logf("patch: apply %q\n", rec.path)
		}
		if rec.path.IsRoot() {
			return nil, fmt.Errorf("%w: empty record path", ErrPatchPath)
		}
		n, err := setAt(next, rec.path, rec.value)
		if err != nil {
			return nil, err
		}
		next = n
	}
	return next, nil
}

// setAt walks node through segs[0..len-2], requiring each intermediate
// segment to resolve to an existing structured value, then assigns the
// final key. Object assignment may introduce a new key; array assignment
// requires an in-bounds index.
func setAt(node any, segs path.Path, value any) (any, error) {
	seg := segs[0]
	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n)+1)
		maps.Copy(out, n)
		if len(segs) == 1 {
			out[seg] = value
			return out, nil
		}
		child, ok := n[seg]
		if !ok {
			return nil, fmt.Errorf("%w: missing segment %q", ErrPatchPath, seg)
		}
		sub, err := setAt(child, segs[1:], value)
		if err != nil {
			return nil, err
		}
		out[seg] = sub
		return out, nil
	case []any:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= len(n) {
			return nil, fmt.Errorf("%w: index %q out of range (len %d)", ErrPatchPath, seg, len(n))
		}
		out := slices.Clone(n)
		if len(segs) == 1 {
			out[idx] = value
			return out, nil
		}
		sub, err := setAt(n[idx], segs[1:], value)
		if err != nil {
			return nil, err
		}
		out[idx] = sub
		return out, nil
	default:
		return nil, fmt.Errorf("%w: segment %q of non-container %T", ErrPatchPath, seg, node)
	}
}
