package storage

import "errors"

// ErrNotFound is returned (wrapped) when a referenced group, expense, or
// settlement does not exist.
var ErrNotFound = errors.New("not found")
