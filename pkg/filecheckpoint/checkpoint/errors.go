package checkpoint

import "errors"

// ErrUnsupportedVersion indicates encoded checkpoint data written by a newer format.
var ErrUnsupportedVersion = errors.New("unsupported checkpoint version")
