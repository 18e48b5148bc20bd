package supernote

import (
	"regexp"
	"strconv"
)

// Metadata text is a repetition of key-value parameters like
// `<KEY1:VALUE1><KEY2:VALUE2>...`. Keys and values never contain
// '<', '>' or ':'; a value may be empty.
var paramPattern = regexp.MustCompile(`<([^:<>]+):([^:<>]*)>`)

// Value holds the value(s) stored for a single parameter key.
// A key that occurs once in a block holds a scalar; a key that recurs
// holds a list with the values in order of occurrence.
type Value struct {
	values []string
	list   bool
}

func scalarValue(s string) Value {
	return Value{values: []string{s}}
}

// IsList tells if the value was folded from repeated keys.
func (v Value) IsList() bool {
	return v.list
}

// String returns the scalar value. For a list it returns the first
// occurrence.
func (v Value) String() string {
	if len(v.values) == 0 {
		return ""
	}
	return v.values[0]
}

// Strings returns all values in order of occurrence.
func (v Value) Strings() []string {
	return v.values
}

// Int converts a scalar value to an integer file address.
func (v Value) Int() (int64, error) {
	if v.list {
		return 0, NewMalformedContainer("expected a single value, got %v", len(v.values))
	}
	n, err := strconv.ParseInt(v.String(), 10, 64)
	if err != nil {
		return 0, NewMalformedContainer("invalid numeric value %q", v.String())
	}
	return n, nil
}

// Ints converts every occurrence to an integer, preserving order.
func (v Value) Ints() ([]int64, error) {
	ints := make([]int64, len(v.values))
	for i, s := range v.values {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, NewMalformedContainer("invalid numeric value %q", s)
		}
		ints[i] = n
	}
	return ints, nil
}

// Params is the parameter mapping decoded from one metadata block.
// Iteration order is the order in which keys first appear in the block.
type Params struct {
	keys   []string
	values map[string]Value
}

func newParams() Params {
	return Params{values: make(map[string]Value)}
}

// add stores a value for key, folding a repeated key into a list.
func (p *Params) add(key, value string) {
	v, ok := p.values[key]
	if !ok {
		p.keys = append(p.keys, key)
		p.values[key] = scalarValue(value)
		return
	}
	v.values = append(v.values, value)
	v.list = true
	p.values[key] = v
}

// Get returns the value stored for key.
func (p Params) Get(key string) (Value, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the keys in the order they first appeared.
func (p Params) Keys() []string {
	return p.keys
}

// Len returns the number of distinct keys.
func (p Params) Len() int {
	return len(p.keys)
}

// extractParameters scans text for parameter tokens, left to right.
// Text without any token yields empty params, not an error.
func extractParameters(text string) Params {
	params := newParams()
	for _, m := range paramPattern.FindAllStringSubmatch(text, -1) {
		params.add(m[1], m[2])
	}
	return params
}
