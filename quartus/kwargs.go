package quartus

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kwargs are named command options, emitted as -name value in insertion
// order.
type Kwargs = orderedmap.OrderedMap[string, any]

// KV is one named option.
type KV struct {
	Name  string
	Value any
}

// Kw returns a named option for NewKwargs.
func Kw(name string, value any) KV {
	return KV{Name: name, Value: value}
}

// NewKwargs builds Kwargs from pairs, keeping their order. A repeated name
// keeps its first position and its last value.
func NewKwargs(pairs ...KV) *Kwargs {
	kw := orderedmap.New[string, any](len(pairs))
	for _, p := range pairs {
		kw.Set(p.Name, p.Value)
	}
	return kw
}
