package cache

import (
	"fmt"

	"github.com/aretw0/nestcache/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// Decode reads key from r and decodes the value into out (a pointer) using
// "mapstructure" struct tags. It reports false, leaving out untouched, when
// nothing is stored at key.
func Decode(r ports.Reader, key string, out any) (bool, error) {
	value, err := r.Get(key)
	if err != nil {
		return false, err
	}
	if value == nil {
		return false, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return false, fmt.Errorf("cache: decoder for %q: %w", key, err)
	}
	if err := decoder.Decode(value); err != nil {
		return false, fmt.Errorf("cache: decode %q: %w", key, err)
	}
	return true, nil
}

// Encode converts a struct (or struct pointer) into a mapping suitable for
// Put or Merge, using "mapstructure" struct tags for the keys.
func Encode(v any) (map[string]any, error) {
	out := make(map[string]any)
	if err := mapstructure.Decode(v, &out); err != nil {
		return nil, fmt.Errorf("cache: encode %T: %w", v, err)
	}
	return out, nil
}
