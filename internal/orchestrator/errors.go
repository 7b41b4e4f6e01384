package orchestrator

import "errors"

// ErrUnreadableIndex is returned when the sources or manifest cannot be
// read at all. It is the only fatal condition of a run.
var ErrUnreadableIndex = errors.New("source unit index is unreadable")
