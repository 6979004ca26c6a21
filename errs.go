package observable

import "errors"

// ErrPatchPath reports a mutation record whose path does not resolve to
// a structured value in the current snapshot. This indicates a write
// made outside the cursor surface or a record queued before a root
// replacement that changed the tree's shape; it is never recovered
// internally.
var ErrPatchPath = errors.New("patch path does not resolve")
