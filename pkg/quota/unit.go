package quota

import "fmt"

// Well-known resource names managed by the executor.
const (
	// Threads is the resource governing logical execution slots.
	Threads = "threads"

	// Memory is the resource governing memory, counted in megabytes.
	Memory = "memory"
)

// Unit names an amount of a single resource, such as "60 memory" or
// "1 threads". Units are plain values; the same unit passed to Acquire
// must later be passed to Release to return the permits.
type Unit struct {
	Key    string
	Amount int
}

// NewUnit creates a resource unit for the given key and amount.
func NewUnit(key string, amount int) Unit {
	return Unit{Key: key, Amount: amount}
}

func (u Unit) String() string {
	return fmt.Sprintf("%d %s", u.Amount, u.Key)
}
