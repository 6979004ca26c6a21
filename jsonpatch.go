package observable

import (
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/goccy/go-json"
)

// ApplyJSONPatch applies an RFC 6902 patch document to the current
// snapshot and installs the result as a whole-state write. The patch is
// applied to a marshalled copy, so a failing patch leaves the container
// untouched; a succeeding one lands atomically through the usual root
// replacement path (cache reset, immediate publication, queued records
// untouched).
func (s *State) ApplyJSONPatch(doc []byte) error {
	patch, err := jsonpatch.DecodePatch(doc)
	if err != nil {
		return fmt.Errorf("decode patch: %w", err)
	}
	cur, err := json.Marshal(s.snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	out, err := patch.Apply(cur)
	if err != nil {
		return fmt.Errorf("apply patch: %w", err)
	}
	var next any
	if err := json.Unmarshal(out, &next); err != nil {
		return fmt.Errorf("unmarshal patched snapshot: %w", err)
	}
	return s.Replace(next)
}
