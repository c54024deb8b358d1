package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Value is a sealed interface over the logical types a column can hold.
// Only Null, String, Number, Bool, Time, Array, and Object implement it.
//
// Time is an input-only variant: callers may supply one for a date column,
// but decoded values never contain it - dates come back as String (the
// stored ISO-8601 text is not re-parsed).
type Value interface {
	value() // Sealed - only these types implement it
}

// Null represents an absent value / SQL NULL / explicit JSON null.
// Using an explicit type ensures all Values satisfy the sealed interface.
type Null struct{}

func (Null) value() {}

// String represents a text value.
type String string

func (String) value() {}

// Number represents a numeric value. Always float64; SQLite's numeric
// affinity stores integral values without a fractional part, so integers
// survive the round trip.
type Number float64

func (Number) value() {}

// Bool represents a boolean value. Stored as integer 1/0.
type Bool bool

func (Bool) value() {}

// Time represents a date-like input for a date column. Encoded to its
// RFC 3339 UTC string form; never produced by decoding.
type Time time.Time

func (Time) value() {}

// Array represents a JSON array of Value elements.
type Array []Value

func (Array) value() {}

// Object represents a JSON object mapping string keys to Value elements.
// Use SortedKeys() for deterministic iteration.
type Object map[string]Value

func (Object) value() {}

// NewString creates a String value.
func NewString(s string) String {
	return String(s)
}

// NewNumber creates a Number value.
func NewNumber(n float64) Number {
	return Number(n)
}

// NewBool creates a Bool value.
func NewBool(b bool) Bool {
	return Bool(b)
}

// NewTime creates a Time value.
func NewTime(t time.Time) Time {
	return Time(t)
}

// Pair represents a key-value pair for typed Object construction.
type Pair struct {
	Key   string
	Value Value
}

// P is a shorthand for Pair for ergonomic construction.
// Example: NewObject(P("name", NewString("Ana")), P("age", NewNumber(30)))
func P(key string, val Value) Pair {
	return Pair{Key: key, Value: val}
}

// NewObject creates an Object from typed key-value pairs.
func NewObject(pairs ...Pair) Object {
	obj := make(Object, len(pairs))
	for _, p := range pairs {
		obj[p.Key] = p.Value
	}
	return obj
}

// SortedKeys returns the object's keys in lexicographic order.
// Deterministic iteration order keeps serialized output stable.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports structural equality of two values.
// Numbers compare exactly; Time compares with time.Time.Equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Time:
		bv, ok := b.(Time)
		return ok && time.Time(av).Equal(time.Time(bv))
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !Equal(v, bvv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Unmarshal decodes JSON text into a Value tree.
// JSON numbers become Number, null becomes Null.
func Unmarshal(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	return fromAny(raw)
}

// fromAny recursively converts a decoded JSON value to a Value.
func fromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case json.Number:
		f, err := strconv.ParseFloat(string(val), 64)
		if err != nil {
			return nil, fmt.Errorf("number out of range: %s", val)
		}
		return Number(f), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			ev, err := fromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = ev
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			ev, err := fromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = ev
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported JSON type: %T", v)
	}
}
