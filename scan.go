package settings

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Scan decodes the effective value of every registered setting that is
// currently set into the target struct or map, using the "setting"
// struct tag for field mapping. Collaborators use this to copy resolved
// values into their own option structs without touching the engine
// again. The target must be a non-nil pointer.
func (m *Manager) Scan(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("target of Scan must be a non-nil pointer, got %T", target)
	}

	m.mu.Lock()
	resolved := make(map[string]any)
	for _, argMap := range m.available {
		for name := range argMap {
			v := m.getSettingLocked(name)
			if v.IsNull() {
				continue
			}
			resolved[name] = v.toAny()
		}
	}
	m.mu.Unlock()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "setting",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToBoolHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(resolved); err != nil {
		return fmt.Errorf("failed to scan settings into %T: %w", target, err)
	}
	return nil
}

// stringToBoolHookFunc applies the engine's string-to-boolean rule when
// a string value lands in a bool field, so a scan agrees with
// GetBoolArg: a flag present with no value reads true, and text is
// decided by its leading integer.
func stringToBoolHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() == reflect.String && t.Kind() == reflect.Bool {
			return interpretBool(data.(string)), nil
		}
		return data, nil
	}
}
