package evidence

// ByteBudget is the remaining-byte allowance for evidence disclosure within
// one run. It is shared by reference across all fetch calls for that run,
// monotonically non-increasing, and never reset once exhausted. All fetches
// for a run happen on a single logical thread, so no locking is needed.
type ByteBudget struct {
	remaining int
}

// NewByteBudget creates a budget with the given initial allowance.
// A non-positive initial value yields an already-exhausted budget.
func NewByteBudget(initial int) *ByteBudget {
	if initial < 0 {
		initial = 0
	}
	return &ByteBudget{remaining: initial}
}

// Remaining returns the bytes still available.
func (b *ByteBudget) Remaining() int { return b.remaining }

// Exhausted reports whether no bytes remain.
func (b *ByteBudget) Exhausted() bool { return b.remaining <= 0 }

// Spend deducts n bytes. The counter floors at zero rather than going
// negative; overspend beyond the floor indicates a backend cap violation
// and is clamped.
func (b *ByteBudget) Spend(n int) {
	if n <= 0 {
		return
	}
	b.remaining -= n
	if b.remaining < 0 {
		b.remaining = 0
	}
}
