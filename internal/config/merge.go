package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidOverride reports an override document that could not be applied.
// The live configuration is never partially updated when it is returned.
var ErrInvalidOverride = errors.New("invalid config override")

// Merge deep-merges a partial JSON object into current. Object-valued keys merge
// recursively and every other value overwrites. The merged document must decode
// strictly into Config and pass Validate.
func Merge(current Config, override []byte) (Config, error) {
	patch, err := decodeObject(override)
	if err != nil {
		return current, fmt.Errorf("%w: %v", ErrInvalidOverride, err)
	}
	return MergeMap(current, patch)
}

// MergeMap is Merge for an already-decoded override object.
func MergeMap(current Config, patch map[string]any) (Config, error) {
	base, err := toMap(current)
	if err != nil {
		return current, fmt.Errorf("%w: %v", ErrInvalidOverride, err)
	}
	merged := deepMerge(base, patch)

	data, err := json.Marshal(merged)
	if err != nil {
		return current, fmt.Errorf("%w: %v", ErrInvalidOverride, err)
	}
	var next Config
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&next); err != nil {
		return current, fmt.Errorf("%w: %v", ErrInvalidOverride, err)
	}
	if err := next.Validate(); err != nil {
		return current, fmt.Errorf("%w: %v", ErrInvalidOverride, err)
	}
	return next, nil
}

func decodeObject(raw []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return map[string]any{}, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, errors.New("trailing data after override object")
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, errors.New("override must be a JSON object")
	}
	return obj, nil
}

func toMap(cfg Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var out map[string]any
	if err := decoder.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func deepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, value := range src {
		patchObj, patchIsObj := value.(map[string]any)
		baseObj, baseIsObj := dst[key].(map[string]any)
		if patchIsObj && baseIsObj {
			dst[key] = deepMerge(baseObj, patchObj)
			continue
		}
		dst[key] = value
	}
	return dst
}
