package sip

import (
	"io"
	"slices"
	"strings"
)

// HeaderKV is a key-value pair for URI or header params.
type HeaderKV struct {
	K string
	V string
	// HasValue is false for params without "=", like ;lr
	HasValue bool
	// Quoted value was enclosed in double quotes on the wire.
	Quoted bool
}

// HeaderParams are key value params kept in order of appearance.
type HeaderParams []HeaderKV

// NewParams creates an empty set of parameters.
func NewParams() HeaderParams {
	// Typical number of params:
	// URI: 1-2
	// Via: 1-2
	// Contact: 2-3
	return make(HeaderParams, 0, 4)
}

// Items returns the entire parameter map. Params without value map to "".
func (hp HeaderParams) Items() map[string]string {
	m := make(map[string]string, len(hp))
	for _, kv := range hp {
		m[kv.K] = kv.V
	}
	return m
}

// Keys return a slice of keys, in order of appearance.
func (hp HeaderParams) Keys() []string {
	s := make([]string, 0, len(hp))
	for _, kv := range hp {
		s = append(s, kv.K)
	}
	return s
}

func (hp HeaderParams) index(key string) int {
	for i, kv := range hp {
		if kv.K == key {
			return i
		}
	}
	return -1
}

// Get returns a value for a given key, if it exists.
// Param without value returns "" and true, use Lookup to tell them apart.
func (hp HeaderParams) Get(key string) (string, bool) {
	if i := hp.index(key); i >= 0 {
		return hp[i].V, true
	}
	return "", false
}

// Lookup returns value, whether value was present and whether key exists.
func (hp HeaderParams) Lookup(key string) (val string, hasValue bool, ok bool) {
	if i := hp.index(key); i >= 0 {
		return hp[i].V, hp[i].HasValue, true
	}
	return "", false, false
}

// GetOr returns a value for a given key, or a default, if it doesn't exist.
func (hp HeaderParams) GetOr(key, def string) string {
	if i := hp.index(key); i >= 0 {
		return hp[i].V
	}
	return def
}

// Add will add new key-value. If key exists it will be overwritten in place.
func (hp *HeaderParams) Add(key string, val string) HeaderParams {
	return hp.set(HeaderKV{K: key, V: val, HasValue: true})
}

// AddFlag adds key without value, rendered as ;key
func (hp *HeaderParams) AddFlag(key string) HeaderParams {
	return hp.set(HeaderKV{K: key})
}

func (hp *HeaderParams) set(kv HeaderKV) HeaderParams {
	if i := hp.index(kv.K); i >= 0 {
		(*hp)[i] = kv
	} else {
		*hp = append(*hp, kv)
	}
	return *hp
}

// Remove removes all values with a given key.
func (hp *HeaderParams) Remove(key string) HeaderParams {
	*hp = slices.DeleteFunc(*hp, func(kv HeaderKV) bool { return kv.K == key })
	return *hp
}

// Has checks does key exists
func (hp HeaderParams) Has(key string) bool {
	return hp.index(key) >= 0
}

// Clone returns underneath params copied
func (hp HeaderParams) Clone() HeaderParams {
	return slices.Clone(hp)
}

// Length returns number of params.
func (hp HeaderParams) Length() int {
	return len(hp)
}

// ToString renders params joined by sep.
// Note that this does not escape special characters, this should already have been done before calling this method.
func (hp HeaderParams) ToString(sep byte) string {
	var buffer strings.Builder
	hp.ToStringWrite(sep, &buffer)
	return buffer.String()
}

// ToStringWrite is same as ToString but it stores to defined buffer instead returning string
func (hp HeaderParams) ToStringWrite(sep byte, buffer io.StringWriter) {
	hp.toStringWrite(string(sep), buffer)
}

func (hp HeaderParams) toStringWrite(sep string, buffer io.StringWriter) {
	for i, kv := range hp {
		if i > 0 {
			buffer.WriteString(sep)
		}
		buffer.WriteString(kv.K)
		if !kv.HasValue {
			continue
		}

		buffer.WriteString("=")
		if kv.Quoted || needsQuote(kv.V) {
			buffer.WriteString("\"")
			buffer.WriteString(escapeQuoted(kv.V))
			buffer.WriteString("\"")
			continue
		}
		buffer.WriteString(kv.V)
	}
}

// String returns params joined with ';' char.
func (hp HeaderParams) String() string {
	return hp.ToString(';')
}

// Equals check if two sets of parameters have the same keys with the same values.
// This does not rely on ordering.
func (hp HeaderParams) Equals(other HeaderParams) bool {
	if len(hp) != len(other) {
		return false
	}

	for _, kv := range hp {
		v, hasValue, ok := other.Lookup(kv.K)
		if !ok || v != kv.V || hasValue != kv.HasValue {
			return false
		}
	}
	return true
}

func needsQuote(v string) bool {
	return strings.ContainsAny(v, " \t;,\"<>")
}
