// Package clone provides the deep-clone primitive used to keep the
// container's internal state alias-free from caller-owned values.
//
// Cloning is a marshal/unmarshal round trip, so the result is always
// JSON-shaped data: map[string]any, []any, string, float64, bool, nil.
// Values that cannot survive the round trip (functions, channels, cyclic
// graphs, live resource handles) produce an error wrapping
// ErrNotCloneable.
package clone

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrNotCloneable reports a value the deep-clone primitive cannot copy.
var ErrNotCloneable = errors.New("value is not deep-cloneable")

// Value returns a structurally equivalent copy of v sharing no mutable
// references with it.
func Value(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotCloneable, err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotCloneable, err)
	}
	return out, nil
}
