package rules

import (
	"errors"
	"fmt"
)

// ErrUsage marks misuse of the registry API: nil or non-function keys,
// nil rules, or seed counts that do not line up with the arguments.
// Distinct from "no rule", which lookups report through their ok bool.
var ErrUsage = errors.New("rules: usage error")

// UsageError reports an API misuse. It matches ErrUsage under errors.Is.
type UsageError struct {
	Op     string
	Detail string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("rules: %s: %s", e.Op, e.Detail)
}

func (e *UsageError) Is(target error) bool { return target == ErrUsage }
