package core

// Params is a nested parameter map as decoded from a configuration
// document. Nested sections are themselves Params.
type Params map[string]any

// AsParams converts a decoded document node into Params. Returns nil if
// the node is not a mapping.
func AsParams(v any) Params {
	switch m := v.(type) {
	case Params:
		return m
	case map[string]any:
		return Params(m)
	default:
		return nil
	}
}

// Sub returns the nested section under key, or nil.
func (p Params) Sub(key string) Params {
	if p == nil {
		return nil
	}
	return AsParams(p[key])
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	if p == nil {
		return false
	}
	_, ok := p[key]
	return ok
}

// Int returns the value under key as an int64. YAML and JSON decoders
// produce a mix of integer and float types, so all numeric kinds are
// accepted.
func (p Params) Int(key string) (int64, bool) {
	if p == nil {
		return 0, false
	}
	switch v := p[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	case float32:
		return int64(v), true
	default:
		return 0, false
	}
}

// Bool returns the value under key as a bool.
func (p Params) Bool(key string) (bool, bool) {
	if p == nil {
		return false, false
	}
	v, ok := p[key].(bool)
	return v, ok
}

// Str returns the value under key as a string.
func (p Params) Str(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p[key].(string)
	return v, ok
}
