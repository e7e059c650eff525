package tcllist

// Value is either a leaf string or an ordered list of Values.
type Value struct {
	text  string
	items []Value
	list  bool
}

// Leaf returns a Value holding a single string.
func Leaf(s string) Value {
	return Value{text: s}
}

// List returns a Value holding items in order.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{items: items, list: true}
}

// Strings returns a one-level list of leaves.
func Strings(elems ...string) Value {
	items := make([]Value, len(elems))
	for i, e := range elems {
		items[i] = Leaf(e)
	}
	return List(items...)
}

// Parse parses text as a list nested depth levels deep.
//
// At depth 0 the text is returned unchanged as a leaf. At depth 1 the
// result is a list of leaves; at depth n each element is itself parsed at
// depth n-1. Negative depths behave like 0.
func Parse(text string, depth int) (Value, error) {
	if depth <= 0 {
		return Leaf(text), nil
	}
	elems, err := Split(text)
	if err != nil {
		return Value{}, err
	}
	items := make([]Value, len(elems))
	for i, elem := range elems {
		v, err := Parse(elem, depth-1)
		if err != nil {
			return Value{}, err
		}
		items[i] = v
	}
	return List(items...), nil
}

// IsList reports whether v is a list rather than a leaf.
func (v Value) IsList() bool {
	return v.list
}

// Len returns the number of items, or 0 for a leaf.
func (v Value) Len() int {
	return len(v.items)
}

// Items returns the list items. It is nil for a leaf.
func (v Value) Items() []Value {
	return v.items
}

// Index returns the i'th item. It panics if v is not a list or i is out of
// range, like slice indexing.
func (v Value) Index(i int) Value {
	return v.items[i]
}

// Text returns the string of a leaf, or the serialized form of a list.
func (v Value) Text() string {
	if !v.list {
		return v.text
	}
	elems := make([]string, len(v.items))
	for i, item := range v.items {
		elems[i] = item.Text()
	}
	return Format(elems...)
}

// String implements fmt.Stringer.
func (v Value) String() string {
	return v.Text()
}

// Strings returns the text of each item. A leaf yields a one-element slice.
func (v Value) Strings() []string {
	if !v.list {
		return []string{v.text}
	}
	out := make([]string, len(v.items))
	for i, item := range v.items {
		out[i] = item.Text()
	}
	return out
}

// Interface converts v to plain Go values: a string for a leaf and []any
// for a list.
func (v Value) Interface() any {
	if !v.list {
		return v.text
	}
	out := make([]any, len(v.items))
	for i, item := range v.items {
		out[i] = item.Interface()
	}
	return out
}
