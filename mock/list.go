package mock

// List describes a list of Len items whose values are produced on demand by
// an item generator. Generators may be asked for any index, including indexes
// at or past Len when an override makes the list longer.
type List struct {
	Len  int
	item ItemFunc
}

// NewList returns a List of n items. A nil item generator yields empty
// objects; negative lengths are treated as zero.
func NewList(n int, item ItemFunc) *List {
	if n < 0 {
		n = 0
	}
	if item == nil {
		item = func(Args, int) Value { return Object(nil) }
	}
	return &List{Len: n, item: item}
}

// Item produces the mock at index.
func (l *List) Item(args Args, index int) Value {
	return l.item(args, index)
}

// MockList returns a generator producing NewList(n, item). This is the form
// base mocks use for list fields.
func MockList(n int, item ItemFunc) Value {
	return Fn(func(Args) Value { return FromList(NewList(n, item)) })
}

// arrayList adapts a literal array to a List indexing into it. Indexes past
// the end are absent.
func arrayList(items []Value) *List {
	return NewList(len(items), func(_ Args, i int) Value {
		if i < 0 || i >= len(items) {
			return Undefined()
		}
		return items[i]
	})
}

// absentList is a List of n absent items.
func absentList(n int) *List {
	return NewList(n, func(Args, int) Value { return Undefined() })
}
