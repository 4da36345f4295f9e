package sim

import "fmt"

// InvariantViolation is the panic value raised when engine or domain code
// breaks a programming invariant: negative delays, over-capacity grants,
// releasing a slot that is not held, container bounds.
// These are bugs, not run-time conditions, so they abort the run.
type InvariantViolation struct {
	Op     string // operation that detected the violation, e.g. "Schedule"
	Detail string
}

func (v InvariantViolation) Error() string {
	return fmt.Sprintf("%s: %s", v.Op, v.Detail)
}

func violate(op, format string, args ...any) {
	panic(InvariantViolation{Op: op, Detail: fmt.Sprintf(format, args...)})
}
