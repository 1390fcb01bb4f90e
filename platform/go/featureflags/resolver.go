package featureflags

import "sort"

// Source records where a resolved flag value came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceOverride Source = "override"
)

// Flag is the resolved value of one feature key for a tenant. It is computed
// per request and never persisted.
type Flag struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
	Source  Source `json:"source"`
}

// Resolve overlays tenant overrides onto the global defaults. Every default
// key appears in the output; overridden keys take the override value. Override
// keys absent from the defaults are included verbatim. The result is sorted by
// key so resolving the same state twice yields identical output.
func Resolve(defaults map[string]bool, overrides map[string]bool) []Flag {
	flags := make([]Flag, 0, len(defaults)+len(overrides))

	for key, enabled := range defaults {
		if value, ok := overrides[key]; ok {
			flags = append(flags, Flag{Key: key, Enabled: value, Source: SourceOverride})
			continue
		}
		flags = append(flags, Flag{Key: key, Enabled: enabled, Source: SourceDefault})
	}

	for key, enabled := range overrides {
		if _, ok := defaults[key]; ok {
			continue
		}
		flags = append(flags, Flag{Key: key, Enabled: enabled, Source: SourceOverride})
	}

	sort.Slice(flags, func(i, j int) bool { return flags[i].Key < flags[j].Key })
	return flags
}

// Enabled reports the resolved value of a single key, falling back to false
// for keys defined nowhere.
func Enabled(defaults map[string]bool, overrides map[string]bool, key string) bool {
	if value, ok := overrides[key]; ok {
		return value
	}
	return defaults[key]
}
