package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Parameters is the caller-supplied mapping of parameter name to number.
// Unknown names are ignored; missing names (or explicit nulls) fall back to
// the layout's defaults. Values must be numeric.
type Parameters map[string]any

// Keys returns the parameter names in sorted order.
func (p Parameters) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// decoder reads typed values out of Parameters, keeping the first error.
type decoder struct {
	layout string
	params Parameters
	err    error
}

func newDecoder(layout string, params Parameters) *decoder {
	return &decoder{layout: layout, params: params}
}

func (d *decoder) fail(field, format string, args ...any) {
	if d.err == nil {
		d.err = &ConfigError{Layout: d.layout, Field: field, Reason: fmt.Sprintf(format, args...)}
	}
}

// float returns params[key] as a float64, or def when absent.
func (d *decoder) float(key string, def float64) float64 {
	raw, ok := d.params[key]
	if !ok || raw == nil {
		return def
	}
	v, ok := toFloat(raw)
	if !ok {
		d.fail(key, "expected a number, got %T", raw)
		return def
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		d.fail(key, "expected a finite number, got %v", v)
		return def
	}
	return v
}

// nonNegative is float with a >= 0 check.
func (d *decoder) nonNegative(key string, def float64) float64 {
	v := d.float(key, def)
	if v < 0 {
		d.fail(key, "must be >= 0, got %v", v)
	}
	return v
}

// positive is float with a > 0 check.
func (d *decoder) positive(key string, def float64) float64 {
	v := d.float(key, def)
	if v <= 0 {
		d.fail(key, "must be > 0, got %v", v)
	}
	return v
}

// integer is float with an integral check.
func (d *decoder) integer(key string, def int) int {
	v := d.float(key, float64(def))
	if v != math.Trunc(v) {
		d.fail(key, "must be a whole number, got %v", v)
		return def
	}
	return int(v)
}

// atLeast is integer with a lower bound.
func (d *decoder) atLeast(key string, def, lower int) int {
	v := d.integer(key, def)
	if v < lower {
		d.fail(key, "must be >= %d, got %d", lower, v)
	}
	return v
}

// int64Value reads an integral value without going through float64, so large
// seeds keep every bit. Floats are accepted only when integral and in range.
func (d *decoder) int64Value(key string, def int64) int64 {
	raw, ok := d.params[key]
	if !ok || raw == nil {
		return def
	}
	switch v := raw.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint:
		if uint64(v) <= math.MaxInt64 {
			return int64(v)
		}
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v)
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
	case float64, float32:
		f, _ := toFloat(v)
		if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return int64(f)
		}
	default:
		d.fail(key, "expected a whole number, got %T", raw)
		return def
	}
	d.fail(key, "must be a whole number in the int64 range, got %v", raw)
	return def
}

// check records a cross-field failure when ok is false.
func (d *decoder) check(ok bool, field, format string, args ...any) {
	if !ok {
		d.fail(field, format, args...)
	}
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
