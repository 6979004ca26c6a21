package track

import "reflect"

// cache maps an underlying container's identity to its cursor, so each
// live object is wrapped at most once per recorder. Identity is the
// container's data pointer; entries for overwritten children are dropped
// at write time and the whole cache is discarded on root replacement, so
// entries never pin trees that are no longer reachable from the shadow
// root for longer than one root generation.
type cache struct {
	m map[uintptr]*Cursor
}

func newCache() *cache {
	return &cache{m: map[uintptr]*Cursor{}}
}

func (c *cache) get(id uintptr) (*Cursor, bool) {
	cur, ok := c.m[id]
	return cur, ok
}

func (c *cache) put(id uintptr, cur *Cursor) {
	c.m[id] = cur
}

func (c *cache) drop(id uintptr) {
	delete(c.m, id)
}

func (c *cache) reset() {
	c.m = map[uintptr]*Cursor{}
}

// identity returns a stable id for a container value. Empty containers
// report id 0: distinct empty slices can share a data pointer, so they
// are never cached.
func identity(v any) (uintptr, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return 0, true
		}
		return rv.Pointer(), true
	case reflect.Slice:
		if rv.Len() == 0 {
			return 0, true
		}
		return rv.Pointer(), true
	}
	return 0, false
}
