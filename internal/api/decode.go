package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// decodeObject reads a JSON object body. Numbers are kept as json.Number so
// large integers survive.
func decodeObject(body io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ValidationError{Reason: "request body must be a JSON object"}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, &ValidationError{Reason: "request body must be a JSON object"}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ValidationError{Reason: "unexpected data after JSON object"}
	}
	return obj, nil
}

// decodeObjectLenient treats an empty or malformed body as {}. Only an
// oversized body is an error.
func decodeObjectLenient(body io.Reader) (map[string]any, error) {
	obj, err := decodeObject(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return map[string]any{}, nil
	}
	return obj, nil
}

// coerceInt reads field as an integer, falling back to def when absent.
// Integral strings, floats (truncated) and booleans are accepted; null,
// non-numeric strings, objects and arrays are not.
func coerceInt(obj map[string]any, field string, def int64) (int64, error) {
	raw, ok := obj[field]
	if !ok {
		return def, nil
	}
	invalid := &ValidationError{Field: field, Reason: "must be an integer"}
	switch v := raw.(type) {
	case nil:
		return 0, invalid
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, invalid
		}
		return truncate(f, invalid)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, invalid
		}
		return n, nil
	case bool:
		return cast.ToInt64E(v)
	default:
		return 0, invalid
	}
}

func truncate(f float64, invalid error) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, invalid
	}
	return cast.ToInt64E(math.Trunc(f))
}

// coerceString reads field as text, falling back to def when absent or
// null. Scalars are formatted; objects and arrays are rejected.
func coerceString(obj map[string]any, field string, def string) (string, error) {
	raw, ok := obj[field]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case json.Number:
		return v.String(), nil
	case map[string]any, []any:
		return "", &ValidationError{Field: field, Reason: "must be a string"}
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return "", &ValidationError{Field: field, Reason: fmt.Sprintf("must be a string: %v", err)}
	}
	return s, nil
}
