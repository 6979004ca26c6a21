package observable

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syogandev/go-observable/path"
)

func newState(t *testing.T, initial any, opts ...Option) *State {
	t.Helper()
	s, err := New(initial, opts...)
	require.NoError(t, err)
	return s
}

// sameRef reports whether two container values share the same backing
// storage.
func sameRef(a, b any) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Kind() != rb.Kind() {
		return false
	}
	switch ra.Kind() {
	case reflect.Map, reflect.Slice:
		return ra.Pointer() == rb.Pointer()
	}
	return false
}

func TestNew_ClonesInitial(t *testing.T) {
	initial := map[string]any{"user": map[string]any{"name": "Ada"}}
	s := newState(t, initial)
	initial["user"].(map[string]any)["name"] = "mutated"

	want := map[string]any{"user": map[string]any{"name": "Ada"}}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("snapshot aliases the initial value (-want +got):\n%s", diff)
	}
}

func TestNew_RejectsNonCloneable(t *testing.T) {
	_, err := New(map[string]any{"fn": func() {}})
	require.Error(t, err)
}

func TestFieldWrite_Immediate(t *testing.T) {
	s := newState(t, map[string]any{"count": 0})
	require.NoError(t, s.Root().Set("count", 1))
	want := map[string]any{"count": float64(1)}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestFieldWrite_ReferentialStability(t *testing.T) {
	s := newState(t, map[string]any{
		"a": map[string]any{"x": 1},
		"b": map[string]any{"y": 2},
		"l": []any{1, 2},
	})
	before := s.Snapshot().(map[string]any)

	require.NoError(t, s.Root().Field("b").Set("y", 3))
	after := s.Snapshot().(map[string]any)

	assert.False(t, sameRef(before, after), "written spine must be fresh")
	assert.False(t, sameRef(before["b"], after["b"]), "written subtree must be fresh")
	assert.True(t, sameRef(before["a"], after["a"]), "unrelated subtree must keep reference equality")
	assert.True(t, sameRef(before["l"], after["l"]), "unrelated array must keep reference equality")
}

func TestDeepWrite(t *testing.T) {
	s := newState(t, map[string]any{
		"user": map[string]any{"address": map[string]any{"city": "Paris"}},
	})
	require.NoError(t, s.Root().Field("user").Field("address").Set("city", "Turin"))
	got := s.Snapshot().(map[string]any)["user"].(map[string]any)["address"].(map[string]any)["city"]
	assert.Equal(t, "Turin", got)
}

func TestArrayElementWrite(t *testing.T) {
	s := newState(t, map[string]any{"tags": []any{"a", "b"}})
	require.NoError(t, s.Root().Field("tags").Set("1", "c"))
	want := map[string]any{"tags": []any{"a", "c"}}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSet_PathString(t *testing.T) {
	s := newState(t, map[string]any{
		"user": map[string]any{"name": "Ada"},
		"tags": []any{"a", "b"},
	})
	require.NoError(t, s.Set("user.name", "Grace"))
	require.NoError(t, s.Set("tags[0]", "z"))
	want := map[string]any{
		"user": map[string]any{"name": "Grace"},
		"tags": []any{"z", "b"},
	}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	err := s.Set("missing.deep", 1)
	require.ErrorIs(t, err, ErrPatchPath)

	err = s.Set("", map[string]any{"fresh": true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"fresh": true}, s.Snapshot())
}

func TestDeepCloneIsolation_FieldWrite(t *testing.T) {
	s := newState(t, map[string]any{"user": map[string]any{"name": "Ada"}})
	v := map[string]any{"name": "Bob", "meta": map[string]any{"n": 1}}
	require.NoError(t, s.Root().Set("user", v))
	v["name"] = "mutated"
	v["meta"].(map[string]any)["n"] = 99

	want := map[string]any{
		"user": map[string]any{"name": "Bob", "meta": map[string]any{"n": float64(1)}},
	}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("stored snapshot aliases caller value (-want +got):\n%s", diff)
	}
}

func TestReplace_Immediate(t *testing.T) {
	s := newState(t, map[string]any{"count": 0})
	require.NoError(t, s.Replace(map[string]any{"count": 10}))
	assert.Equal(t, map[string]any{"count": float64(10)}, s.Snapshot())
}

func TestReplace_ResetsWrapperCache(t *testing.T) {
	s := newState(t, map[string]any{"user": map[string]any{"name": "Ada"}})
	before := s.Root().Field("user")
	require.NotNil(t, before)

	require.NoError(t, s.Replace(map[string]any{"user": map[string]any{"name": "Bob"}}))

	after := s.Root().Field("user")
	require.NotNil(t, after)
	assert.NotSame(t, before, after, "stale wrapper returned after root replacement")

	// Writes through the fresh wrapper land on the new root.
	require.NoError(t, after.Set("name", "Charlie"))
	got := s.Snapshot().(map[string]any)["user"].(map[string]any)["name"]
	assert.Equal(t, "Charlie", got)
}

func TestBatch_Ordering(t *testing.T) {
	s := newState(t, map[string]any{"count": 0})
	require.NoError(t, s.EnableBatch(true))
	require.NoError(t, s.Root().Set("count", 1))
	require.NoError(t, s.Root().Set("count", 2))
	assert.Equal(t, map[string]any{"count": float64(0)}, s.Snapshot(), "queued writes must not apply early")

	require.NoError(t, s.Update())
	assert.Equal(t, map[string]any{"count": float64(2)}, s.Snapshot(), "last write in order wins")
}

func TestEnableBatch_ToggleAppliesPending(t *testing.T) {
	s := newState(t, map[string]any{"count": 0})
	require.NoError(t, s.EnableBatch(true))
	require.NoError(t, s.Root().Set("count", 1))
	require.NoError(t, s.Root().Set("count", 2))
	require.NoError(t, s.EnableBatch(false))
	assert.Equal(t, map[string]any{"count": float64(2)}, s.Snapshot())

	// Back in immediate mode, writes apply at once.
	require.NoError(t, s.Root().Set("count", 3))
	assert.Equal(t, map[string]any{"count": float64(3)}, s.Snapshot())
}

func TestUpdate_NoopWhenImmediate(t *testing.T) {
	var published int
	s := newState(t, map[string]any{"count": 0}, WithNotify(func(any) { published++ }))
	require.NoError(t, s.Update())
	assert.Zero(t, published)
}

func TestBatch_Atomic(t *testing.T) {
	s := newState(t, map[string]any{"a": 0, "b": 0})
	boom := errors.New("boom")
	err := s.Batch(func() error {
		if err := s.Root().Set("a", 1); err != nil {
			return err
		}
		if err := s.Root().Set("b", 1); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, map[string]any{"a": float64(0), "b": float64(0)}, s.Snapshot())

	// The container still works after rollback.
	require.NoError(t, s.Root().Set("a", 2))
	assert.Equal(t, map[string]any{"a": float64(2), "b": float64(0)}, s.Snapshot())
}

func TestBatch_AtomicUnderPanic(t *testing.T) {
	s := newState(t, map[string]any{"a": 0})
	assert.Panics(t, func() {
		_ = s.Batch(func() error {
			_ = s.Root().Set("a", 1)
			panic("boom")
		})
	})
	assert.Equal(t, map[string]any{"a": float64(0)}, s.Snapshot())
}

func TestBatch_AppliesOnSuccess(t *testing.T) {
	var published int
	s := newState(t, map[string]any{"a": 0, "b": 0}, WithNotify(func(any) { published++ }))
	err := s.Batch(func() error {
		if err := s.Root().Set("a", 1); err != nil {
			return err
		}
		return s.Root().Set("b", 2)
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1), "b": float64(2)}, s.Snapshot())
	assert.Equal(t, 1, published, "one notification per applied transaction")
}

func TestBatch_NestedInsideOuterSession(t *testing.T) {
	s := newState(t, map[string]any{"a": 0, "b": 0})
	require.NoError(t, s.EnableBatch(true))
	require.NoError(t, s.Root().Set("a", 1)) // queued in outer session

	err := s.Batch(func() error {
		return s.Root().Set("b", 2)
	})
	require.NoError(t, err)
	// The inner batch applied its own writes only; the outer queue is intact.
	assert.Equal(t, map[string]any{"a": float64(0), "b": float64(2)}, s.Snapshot())

	require.NoError(t, s.EnableBatch(false))
	assert.Equal(t, map[string]any{"a": float64(1), "b": float64(2)}, s.Snapshot())
}

func TestRootReplace_BypassesQueue(t *testing.T) {
	var published int
	s := newState(t, map[string]any{"count": 0}, WithNotify(func(any) { published++ }))
	require.NoError(t, s.EnableBatch(true))
	require.NoError(t, s.Replace(map[string]any{"count": 10}))
	assert.Equal(t, 1, published, "root replacement publishes immediately while batching")
	assert.Equal(t, map[string]any{"count": float64(10)}, s.Snapshot())
}

// The documented race: a root replacement while batching does not clear
// the queue, and a field write recorded after the replacement still
// queues and applies on the next flush, against the new root.
func TestRootReplace_ThenQueuedWrite(t *testing.T) {
	s := newState(t, map[string]any{"count": 0, "user": map[string]any{"name": "Alice"}})
	require.NoError(t, s.EnableBatch(true))

	require.NoError(t, s.Replace(map[string]any{"count": 10, "user": map[string]any{"name": "Bob"}}))
	require.NoError(t, s.Root().Field("user").Set("name", "Charlie"))

	want := map[string]any{"count": float64(10), "user": map[string]any{"name": "Bob"}}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("before flush (-want +got):\n%s", diff)
	}

	require.NoError(t, s.Update())
	want["user"] = map[string]any{"name": "Charlie"}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("after flush (-want +got):\n%s", diff)
	}
}

func TestRootReplace_EarlierQueuedWriteSurvives(t *testing.T) {
	s := newState(t, map[string]any{"count": 0})
	require.NoError(t, s.EnableBatch(true))
	require.NoError(t, s.Root().Set("count", 1)) // queued before the replacement
	require.NoError(t, s.Replace(map[string]any{"count": 10}))
	require.NoError(t, s.Update())
	assert.Equal(t, map[string]any{"count": float64(1)}, s.Snapshot(),
		"queued record applies against the replaced root")
}

func TestFlush_PathFailure(t *testing.T) {
	s := newState(t, map[string]any{"user": map[string]any{"name": "Ada"}})
	require.NoError(t, s.EnableBatch(true))
	require.NoError(t, s.Root().Field("user").Set("name", "Grace")) // queued
	require.NoError(t, s.Replace(map[string]any{"count": 10}))      // new root lacks "user"

	err := s.EnableBatch(false)
	require.ErrorIs(t, err, ErrPatchPath)
	assert.Equal(t, map[string]any{"count": float64(10)}, s.Snapshot(), "snapshot unchanged on failed flush")
}

func TestObserver(t *testing.T) {
	type seen struct {
		path  string
		value any
		prev  any
	}
	var got []seen
	s := newState(t, map[string]any{"count": 0},
		WithObserver(func(p path.Path, value, prev any) {
			got = append(got, seen{path: p.String(), value: value, prev: prev})
		}))

	require.NoError(t, s.EnableBatch(true))
	require.NoError(t, s.Root().Set("count", 1))
	require.NoError(t, s.Replace(map[string]any{"count": 5}))

	// The observer fires per intercepted write, before batching
	// decisions, queued or not.
	require.Len(t, got, 2)
	assert.Equal(t, "count", got[0].path)
	assert.Equal(t, float64(1), got[0].value)
	assert.Equal(t, float64(0), got[0].prev)
	assert.Equal(t, "", got[1].path, "root replacement observes an empty path")
	assert.Equal(t, map[string]any{"count": float64(5)}, got[1].value)
}

func TestNotify_OncePerTransaction(t *testing.T) {
	var published []any
	s := newState(t, map[string]any{"a": 0, "b": 0},
		WithNotify(func(snap any) { published = append(published, snap) }))

	require.NoError(t, s.Root().Set("a", 1)) // immediate: one publication
	require.NoError(t, s.EnableBatch(true))
	require.NoError(t, s.Root().Set("a", 2))
	require.NoError(t, s.Root().Set("b", 3))
	require.NoError(t, s.EnableBatch(false)) // flush: one publication

	require.Len(t, published, 2)
	assert.Equal(t, map[string]any{"a": float64(1), "b": float64(0)}, published[0])
	assert.Equal(t, map[string]any{"a": float64(2), "b": float64(3)}, published[1])
}

func TestFailedWrite_LeavesSnapshotUntouched(t *testing.T) {
	s := newState(t, map[string]any{"count": 0})
	before := s.Snapshot()

	err := s.Root().Set("fn", func() {})
	require.Error(t, err)
	assert.True(t, sameRef(before, s.Snapshot()), "snapshot must be exactly as it was")
}

func TestLeafState(t *testing.T) {
	s := newState(t, 41)
	assert.Equal(t, float64(41), s.Snapshot())
	assert.Nil(t, s.Root(), "a leaf state has no field-write surface")

	require.NoError(t, s.Replace(42))
	assert.Equal(t, float64(42), s.Snapshot())

	err := s.Set("a", 1)
	require.ErrorIs(t, err, ErrPatchPath)
}

func TestStartInBatchMode(t *testing.T) {
	s := newState(t, map[string]any{"count": 0}, WithBatching(true))
	require.NoError(t, s.Root().Set("count", 1))
	assert.Equal(t, map[string]any{"count": float64(0)}, s.Snapshot())
	require.NoError(t, s.Update())
	assert.Equal(t, map[string]any{"count": float64(1)}, s.Snapshot())
}
