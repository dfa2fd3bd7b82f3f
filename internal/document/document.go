package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
)

// Document is an ordered mapping. Values are scalars (string, int, float64,
// bool, nil), nested *Document, or []any of those.
//
// A nil *Document behaves as an empty document for reads.
type Document struct {
	keys   []string
	values map[string]any
}

// New returns an empty document.
func New() *Document {
	return &Document{values: make(map[string]any)}
}

// FromPairs builds a document from alternating keys and values. It is meant
// for tests and literals; it panics on an odd number of arguments or a
// non-string key.
func FromPairs(kv ...any) *Document {
	if len(kv)%2 != 0 {
		panic("document.FromPairs: odd number of arguments")
	}

	d := New()

	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("document.FromPairs: key %v is not a string", kv[i]))
		}

		d.Set(k, kv[i+1])
	}

	return d
}

// Len returns the number of keys.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}

	return len(d.keys)
}

// Keys returns the keys in insertion order.
func (d *Document) Keys() []string {
	if d == nil {
		return nil
	}

	return slices.Clone(d.keys)
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	if d == nil {
		return false
	}

	_, ok := d.values[key]

	return ok
}

// Get returns the value for key.
func (d *Document) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}

	v, ok := d.values[key]

	return v, ok
}

// GetString returns the value for key when it is a string.
func (d *Document) GetString(key string) (string, bool) {
	v, ok := d.Get(key)
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}

// GetDocument returns the value for key when it is a nested mapping.
func (d *Document) GetDocument(key string) (*Document, bool) {
	v, ok := d.Get(key)
	if !ok {
		return nil, false
	}

	sub, ok := v.(*Document)

	return sub, ok
}

// Set stores value under key. New keys are appended; existing keys keep
// their position.
func (d *Document) Set(key string, value any) {
	if d.values == nil {
		d.values = make(map[string]any)
	}

	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}

	d.values[key] = value
}

// Delete removes key if present.
func (d *Document) Delete(key string) {
	if d == nil {
		return
	}

	if _, ok := d.values[key]; !ok {
		return
	}

	delete(d.values, key)
	d.keys = slices.DeleteFunc(d.keys, func(k string) bool { return k == key })
}

// All iterates over key/value pairs in order.
func (d *Document) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if d == nil {
			return
		}

		for _, k := range d.keys {
			if !yield(k, d.values[k]) {
				return
			}
		}
	}
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}

	c := &Document{
		keys:   slices.Clone(d.keys),
		values: make(map[string]any, len(d.values)),
	}

	for k, v := range d.values {
		c.values[k] = cloneValue(v)
	}

	return c
}

// ToMap converts the document to plain maps and slices, recursively.
func (d *Document) ToMap() map[string]any {
	if d == nil {
		return nil
	}

	m := make(map[string]any, len(d.keys))
	for k, v := range d.All() {
		m[k] = plainValue(v)
	}

	return m
}

// MarshalJSON encodes the document as a JSON object in key order. HTML
// characters are not escaped, so operators such as "<=" stay literal.
func (d *Document) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := encodeJSON(&buf, k); err != nil {
			return nil, err
		}

		buf.WriteByte(':')

		if err := encodeJSON(&buf, d.values[k]); err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func encodeJSON(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer

	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return err
	}

	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))

	return nil
}

// Equal reports whether a and b hold the same keys and values. Key order is
// not compared; use Keys for that.
func Equal(a, b *Document) bool {
	if a.Len() != b.Len() {
		return false
	}

	for k, av := range a.All() {
		bv, ok := b.Get(k)
		if !ok || !valuesEqual(av, bv) {
			return false
		}
	}

	return true
}

func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case *Document:
		bv, ok := b.(*Document)
		return ok && Equal(av, bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}

		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}

		return true
	default:
		return a == b
	}
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case *Document:
		return tv.Clone()
	case []any:
		out := make([]any, len(tv))
		for i := range tv {
			out[i] = cloneValue(tv[i])
		}

		return out
	default:
		return v
	}
}

func plainValue(v any) any {
	switch tv := v.(type) {
	case *Document:
		return tv.ToMap()
	case []any:
		out := make([]any, len(tv))
		for i := range tv {
			out[i] = plainValue(tv[i])
		}

		return out
	default:
		return v
	}
}
