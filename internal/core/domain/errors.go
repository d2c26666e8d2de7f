package domain

import "errors"

// ErrConcurrentModification signals that a wallet row changed between read
// and write inside one apply attempt. It stays internal to the repository
// and the engine's retry loop; callers never see it.
var ErrConcurrentModification = errors.New("wallet modified concurrently")
