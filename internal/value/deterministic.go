package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Marshal produces deterministic JSON for storage in a text column.
// The same Value tree always serializes to the same bytes:
//  1. Object keys are emitted in sorted order
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Numbers use the shortest form that parses back to the same float64
//
// Strings are preserved byte-for-byte so a stored value unmarshals to the
// exact tree that was marshaled; Unicode canonicalization is an input
// concern (NormalizeNFC), never a storage one. Null serializes to the
// literal `null`; the codec layer decides whether that literal or SQL NULL
// reaches storage.
func Marshal(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case String:
		return marshalString(string(val))
	case Number:
		return marshalNumber(float64(val)), nil
	case Bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case Time:
		return marshalString(time.Time(val).UTC().Format(time.RFC3339Nano))
	case Array:
		return marshalArray(val)
	case Object:
		return marshalObject(val)
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}

// marshalNumber formats a float64 with the shortest representation that
// round-trips through strconv.ParseFloat. Integral values within the safe
// range are written without a fractional part. Non-finite values have no
// JSON representation and degrade to null.
func marshalNumber(f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null")
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.AppendInt(nil, int64(f), 10)
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64)
}

// NormalizeNFC returns v with every string - including object keys -
// canonicalized to Unicode NFC. Applied by the facade to incoming field
// values so equal-looking text compares and stores identically; the
// marshal path itself never rewrites strings.
func NormalizeNFC(v Value) Value {
	switch val := v.(type) {
	case String:
		return String(norm.NFC.String(string(val)))
	case Array:
		out := make(Array, len(val))
		for i, elem := range val {
			out[i] = NormalizeNFC(elem)
		}
		return out
	case Object:
		out := make(Object, len(val))
		for k, elem := range val {
			out[norm.NFC.String(k)] = NormalizeNFC(elem)
		}
		return out
	default:
		return v
	}
}

// marshalString produces a JSON string with HTML escaping disabled.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}

	// json.Encoder adds a trailing newline, remove it
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}
	return result, nil
}

// marshalArray marshals an array element by element.
func marshalArray(arr Array) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := Marshal(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// marshalObject marshals an object with sorted keys.
func marshalObject(obj Object) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := marshalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := Marshal(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
