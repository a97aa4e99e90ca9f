package querycache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// MaxKeyLength is the maximum allowed length of a rendered key.
const MaxKeyLength = 512

// Key identifies a cache entry: [entity, ...scope, params?].
//
// Keys compare by their rendered String form and prefix-match on whole
// segments, so "posts/authors" matches "posts/authors/3f2a..." but not
// "posts/authorsX".
type Key []string

// String renders the key with segments joined by "/".
func (k Key) String() string {
	return strings.Join(k, "/")
}

// Entity returns the first segment.
func (k Key) Entity() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

// HasPrefix reports whether prefix is a leading run of k's segments.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, seg := range prefix {
		if k[i] != seg {
			return false
		}
	}
	return true
}

// Append returns a new key with segs appended.
func (k Key) Append(segs ...string) Key {
	out := make(Key, 0, len(k)+len(segs))
	out = append(out, k...)
	return append(out, segs...)
}

// Validate checks that the key can be stored.
func (k Key) Validate() error {
	if len(k) == 0 {
		return ErrInvalidKey
	}
	for _, seg := range k {
		if strings.TrimSpace(seg) == "" || strings.ContainsAny(seg, "/\n\r") {
			return ErrInvalidKey
		}
	}
	if len(k.String()) > MaxKeyLength {
		return ErrKeyTooLong
	}
	return nil
}

// BuildKey builds a key from an entity name, a scope path and a parameter
// set. Params are canonicalized (object keys sorted, JSON encoded) and
// hashed into one trailing segment, so two parameter values that encode to
// the same JSON object produce the same key regardless of field or map
// order. The params segment is omitted when params is nil or encodes to an
// empty object.
func BuildKey(entity string, scope []string, params any) (Key, error) {
	key := make(Key, 0, len(scope)+2)
	key = append(key, entity)
	key = append(key, scope...)

	seg, err := paramsSegment(params)
	if err != nil {
		return nil, err
	}
	if seg != "" {
		key = append(key, seg)
	}

	if err := key.Validate(); err != nil {
		return nil, err
	}
	return key, nil
}

// MustBuildKey is like BuildKey but panics on error. It is meant for
// descriptors whose params are plain structs that always encode.
func MustBuildKey(entity string, scope []string, params any) Key {
	key, err := BuildKey(entity, scope, params)
	if err != nil {
		panic(err)
	}
	return key
}

func paramsSegment(params any) (string, error) {
	if params == nil {
		return "", nil
	}

	// Round-trip through JSON so structs and maps share one canonical form.
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("querycache: failed to encode params: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("querycache: failed to decode params: %w", err)
	}

	switch v := generic.(type) {
	case nil:
		return "", nil
	case map[string]any:
		if len(v) == 0 {
			return "", nil
		}
	}

	canonical, err := canonicalize(generic)
	if err != nil {
		return "", fmt.Errorf("querycache: failed to canonicalize params: %w", err)
	}

	hash := sha256.Sum256(canonical)
	return hex.EncodeToString(hash[:8]), nil
}

// canonicalize produces a deterministic JSON representation of v.
func canonicalize(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	return append(result, '}'), nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}
		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	return append(result, ']'), nil
}
