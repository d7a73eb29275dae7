package cache

import (
	"encoding/json"
	"fmt"
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// defaultKeySerializer joins the method name and its serialized args with
// KeySeparator. Keys built from equal args are equal across calls and processes.
type defaultKeySerializer struct {
	namespace string
}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// NewNamespacedKeySerializer creates a serializer that prefixes every key with namespace.
func NewNamespacedKeySerializer(namespace string) KeySerializer {
	return &defaultKeySerializer{namespace: namespace}
}

// SerializeKey builds a cache key from method name and args.
func (s *defaultKeySerializer) SerializeKey(method string, args ...any) string {
	parts := make([]string, 0, len(args)+2)
	if s.namespace != "" {
		parts = append(parts, s.namespace)
	}
	parts = append(parts, method)

	for _, arg := range args {
		parts = append(parts, serializeValue(arg))
	}

	return strings.Join(parts, KeySeparator)
}

func serializeValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprintf("%v", x)
	}

	// encoding/json sorts map keys, which keeps composite keys deterministic
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("fallback:%T", v)
	}
	return "json:" + string(data)
}
