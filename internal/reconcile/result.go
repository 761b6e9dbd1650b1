package reconcile

// Result expresses the outcome of one reconciliation invocation.
// ID is set when the slot exists (or a create-or-update call committed);
// a zero Result means the slot is absent and nothing had to change.
type Result struct {
	Changed bool
	ID      string
	// State is the slot's running state after the invocation, "Running"
	// or "Stopped". Empty when the slot does not exist.
	State string
}
