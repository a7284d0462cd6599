package tagtree

import (
	"fmt"
)

// ClearTagsError reports that fingerprint rotation could not reach the
// store. Unlike read/write paths, which degrade silently, a failed rotation
// means stale entries stay valid - callers usually want to retry or alert.
type ClearTagsError struct {
	Tags []string
	Err  error
}

func (e *ClearTagsError) Error() string {
	return fmt.Sprintf("clear %d tag(s) failed: %v", len(e.Tags), e.Err)
}

func (e *ClearTagsError) Unwrap() error { return e.Err }
