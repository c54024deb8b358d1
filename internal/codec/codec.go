// Package codec converts between logical column values and the storage
// representations handed to (and returned by) the SQLite driver.
//
// Encode and Decode are pure, total functions: they never return errors.
// A value whose runtime shape disagrees with the declared logical type is
// coerced on a best-effort basis - rejecting it is the validation
// capability's job, not the codec's. This tolerance is a documented soft
// spot, not an accident.
package codec

import (
	"time"

	"github.com/spf13/cast"

	"modelite/internal/schema"
	"modelite/internal/value"
)

// JSONNull is the stored text for an explicit JSON null.
//
// A json column encodes a Null value as this three-character literal rather
// than SQL NULL. The distinction is deliberate: during a partial update,
// "column set to JSON null" (stored `null`) and "no value provided" (column
// absent from the payload) must remain distinguishable.
const JSONNull = "null"

// Encode converts a logical value to a driver-level bind argument for a
// column of logical type t.
//
// Null encodes to SQL NULL for every type except json, which stores the
// JSONNull literal. Booleans store as integer 1/0. Dates store as their
// RFC 3339 UTC string; a String supplied for a date column passes through
// unchanged.
func Encode(v value.Value, t schema.ColumnType) any {
	if v == nil {
		v = value.Null{}
	}

	if _, isNull := v.(value.Null); isNull {
		if t == schema.TypeJSON {
			return JSONNull
		}
		return nil
	}

	switch t {
	case schema.TypeString:
		return encodeString(v)
	case schema.TypeNumber:
		return encodeNumber(v)
	case schema.TypeBool:
		return encodeBool(v)
	case schema.TypeJSON:
		data, err := value.Marshal(v)
		if err != nil {
			// Marshal only fails on values outside the sealed union;
			// degrade to the null literal rather than corrupt the column.
			return JSONNull
		}
		return string(data)
	case schema.TypeDate:
		return encodeDate(v)
	default:
		return encodeString(v)
	}
}

func encodeString(v value.Value) string {
	switch val := v.(type) {
	case value.String:
		return string(val)
	case value.Number:
		return cast.ToString(float64(val))
	case value.Bool:
		return cast.ToString(bool(val))
	case value.Time:
		return time.Time(val).UTC().Format(time.RFC3339)
	default:
		// Composite values on a string column degrade to their JSON text.
		data, err := value.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func encodeNumber(v value.Value) float64 {
	switch val := v.(type) {
	case value.Number:
		return float64(val)
	case value.Bool:
		if val {
			return 1
		}
		return 0
	case value.String:
		return cast.ToFloat64(string(val))
	default:
		return 0
	}
}

func encodeBool(v value.Value) int64 {
	switch val := v.(type) {
	case value.Bool:
		if val {
			return 1
		}
		return 0
	case value.Number:
		if val != 0 {
			return 1
		}
		return 0
	case value.String:
		if cast.ToBool(string(val)) {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func encodeDate(v value.Value) string {
	switch val := v.(type) {
	case value.Time:
		return time.Time(val).UTC().Format(time.RFC3339)
	case value.String:
		// Already a date string; stored verbatim.
		return string(val)
	default:
		return cast.ToString(rawOf(v))
	}
}

// Decode converts a raw storage value (as scanned from the driver) back to
// a logical value for a column of logical type t.
//
// Booleans decode via a nonzero test on whatever numeric or textual form
// storage returns. JSON short-circuits empty text and the JSONNull literal
// to Null. Dates decode as the stored string - never re-parsed into a time
// value; encode(date) -> string, decode(string) -> same string is the
// documented round-trip contract.
func Decode(raw any, t schema.ColumnType) value.Value {
	if raw == nil {
		return value.Null{}
	}

	switch t {
	case schema.TypeString, schema.TypeDate:
		return value.String(toText(raw))
	case schema.TypeNumber:
		return value.Number(cast.ToFloat64(raw))
	case schema.TypeBool:
		return value.Bool(cast.ToFloat64(raw) != 0)
	case schema.TypeJSON:
		text := toText(raw)
		if text == "" || text == JSONNull {
			return value.Null{}
		}
		v, err := value.Unmarshal([]byte(text))
		if err != nil {
			// Unparseable stored text surfaces as its raw string form.
			return value.String(text)
		}
		return v
	default:
		return value.String(toText(raw))
	}
}

// toText normalizes driver text forms ([]byte or string) to a string.
func toText(raw any) string {
	if b, ok := raw.([]byte); ok {
		return string(b)
	}
	return cast.ToString(raw)
}

// rawOf unwraps a Value to its underlying Go form for loose coercion.
func rawOf(v value.Value) any {
	switch val := v.(type) {
	case value.String:
		return string(val)
	case value.Number:
		return float64(val)
	case value.Bool:
		return bool(val)
	case value.Time:
		return time.Time(val)
	default:
		return nil
	}
}
