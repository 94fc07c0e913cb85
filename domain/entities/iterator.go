package entities

// Order is the direction of a storage range scan.
type Order int32

const (
	Ascending  Order = 1
	Descending Order = 2
)

// Valid reports whether the order is one of the two defined values.
func (o Order) Valid() bool {
	return o == Ascending || o == Descending
}

// Record is a single key/value pair yielded by a storage iterator.
type Record struct {
	Key   []byte
	Value []byte
}
