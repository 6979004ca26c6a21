package observable

import (
	"fmt"
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/syogandev/go-observable/debug"
)

// WatchFunc receives the previous and new value of a watched expression
// when they differ.
type WatchFunc func(prev, next any)

type watch struct {
	src  string
	prog *vm.Program
	last any
	fn   WatchFunc
}

// Watch registers a computed selector: src is an expr-lang expression
// evaluated against every published snapshot, and fn fires when its
// value changes. State fields are addressable directly ("user.name");
// the whole snapshot is also bound as "state". The expression is
// evaluated once at registration to seed the comparison value.
//
// Evaluation errors after registration (for example a field removed by a
// root replacement) skip the watch for that publication.
func (s *State) Watch(src string, fn WatchFunc) error {
	prog, err := expr.Compile(src)
	if err != nil {
		return fmt.Errorf("compile watch %q: %w", src, err)
	}
	w := &watch{src: src, prog: prog, fn: fn}
	val, err := expr.Run(prog, watchEnv(s.snapshot))
	if err != nil {
		return fmt.Errorf("eval watch %q: %w", src, err)
	}
	w.last = val
	s.watches = append(s.watches, w)
	return nil
}

func watchEnv(snapshot any) map[string]any {
	env := map[string]any{}
	if m, ok := snapshot.(map[string]any); ok {
		for k, v := range m {
			env[k] = v
		}
	}
	env["state"] = snapshot
	return env
}

func (s *State) runWatches(next any) {
	if len(s.watches) == 0 {
		return
	}
	env := watchEnv(next)
	for _, w := range s.watches {
		val, err := expr.Run(w.prog, env)
		if err != nil {
			if debug.Watch() {
				debug.Logf("watch %q: %v\n", w.src, err)
			}
			continue
		}
		if reflect.DeepEqual(val, w.last) {
			continue
		}
		prev := w.last
		w.last = val
		w.fn(prev, val)
	}
}
