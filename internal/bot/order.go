package bot

import "container/list"

// Order is the working permutation of part names consulted each turn. Each
// name appears exactly once; moves are O(1).
type Order struct {
	l   *list.List
	idx map[string]*list.Element
}

// NewOrder builds an order from names, dropping duplicates and blanks.
func NewOrder(names []string) *Order {
	o := &Order{l: list.New(), idx: make(map[string]*list.Element, len(names))}
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, dup := o.idx[n]; dup {
			continue
		}
		o.idx[n] = o.l.PushBack(n)
	}
	return o
}

// Names returns the current order front to back.
func (o *Order) Names() []string {
	names := make([]string, 0, o.l.Len())
	for e := o.l.Front(); e != nil; e = e.Next() {
		names = append(names, e.Value.(string))
	}
	return names
}

// Len returns the number of names.
func (o *Order) Len() int {
	return o.l.Len()
}

// Contains reports whether name is in the order.
func (o *Order) Contains(name string) bool {
	_, ok := o.idx[name]
	return ok
}

// MoveToFront moves name to the front. It reports false for unknown names.
func (o *Order) MoveToFront(name string) bool {
	e, ok := o.idx[name]
	if !ok {
		return false
	}
	o.l.MoveToFront(e)
	return true
}

// MoveToBack moves name to the back. It reports false for unknown names.
func (o *Order) MoveToBack(name string) bool {
	e, ok := o.idx[name]
	if !ok {
		return false
	}
	o.l.MoveToBack(e)
	return true
}

// Reconcile keeps the names of current that are still in defaults, in their
// current order, and appends any default names current lacks.
func Reconcile(current, defaults []string) []string {
	want := make(map[string]bool, len(defaults))
	for _, n := range defaults {
		want[n] = true
	}
	out := make([]string, 0, len(defaults))
	seen := make(map[string]bool, len(defaults))
	for _, n := range current {
		if want[n] && !seen[n] {
			out = append(out, n)
			seen[n] = true
		}
	}
	for _, n := range defaults {
		if !seen[n] {
			out = append(out, n)
			seen[n] = true
		}
	}
	return out
}
