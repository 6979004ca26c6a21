package observable

import "github.com/syogandev/go-observable/debug"

// EnableBatch switches between the Immediate and Batching modes. Turning
// batching on has no side effect beyond the mode flag; turning it off
// flushes all queued records in one transaction and returns to
// Immediate. The only error source is a queued record whose path no
// longer resolves (see ErrPatchPath); in that case the queue is kept and
// the snapshot is unchanged.
func (s *State) EnableBatch(on bool) error {
	if on {
		s.batching = true
		return nil
	}
	if !s.batching {
		return nil
	}
	if err := s.flush(); err != nil {
		return err
	}
	s.batching = false
	return nil
}

// Update flushes queued mutations without leaving batching mode. It is a
// no-op when not batching or when the queue is empty.
func (s *State) Update() error {
	if !s.batching {
		return nil
	}
	return s.flush()
}

// Batch runs fn inside its own batching scope and applies the mutations
// it performed atomically. The surrounding mode and queue are saved
// first and restored afterward, so a Batch nested inside an outer
// batching session resumes that session correctly.
//
// If fn returns an error or panics, none of its mutations are applied:
// the saved mode and queue are restored exactly and the error (or panic)
// propagates unchanged.
func (s *State) Batch(fn func() error) error {
	savedMode, savedQueue := s.batching, s.queue
	s.batching, s.queue = true, nil
	completed := false
	defer func() {
		if !completed {
			s.batching, s.queue = savedMode, savedQueue
		}
	}()
	if err := fn(); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		return err
	}
	completed = true
	s.batching, s.queue = savedMode, savedQueue
	return nil
}

// flush applies the queued records in enqueue order inside one
// transaction and publishes the result once. On failure the queue is
// left intact and the snapshot unchanged.
func (s *State) flush() error {
	if len(s.queue) == 0 {
		return nil
	}
	if debug.Flush() {
		debug.Logf("observable: flush %d records\n", len(s.queue))
	}
	next, err := applyAll(s.snapshot, s.queue)
	if err != nil {
		return err
	}
	s.queue = nil
	s.publish(next)
	return nil
}
