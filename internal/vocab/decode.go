package vocab

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode merges raw configuration (as produced by viper) over the default set.
// Lists that are absent or empty in raw keep their defaults.
func Decode(raw map[string]any) (Set, error) {
	set := Default()
	if len(raw) == 0 {
		return set, nil
	}

	var override Set
	cfg := &mapstructure.DecoderConfig{
		Result:           &override,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return set, fmt.Errorf("create vocabulary decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return set, fmt.Errorf("decode vocabulary: %w", err)
	}

	if len(override.Skills) > 0 {
		set.Skills = override.Skills
	}
	if len(override.Education) > 0 {
		set.Education = override.Education
	}
	if len(override.Roles) > 0 {
		set.Roles = override.Roles
	}

	return set, nil
}
