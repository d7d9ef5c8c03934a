package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
)

// EnvPrefix is the prefix of environment variables overriding the file
// configuration. Sections are separated by a double underscore, for example
// HABITQUEST_REWARD__LOCK_DURATION=30s.
const EnvPrefix = "HABITQUEST_"

// Load reads the TOML file at path (if path is not empty), applies environment
// overrides and decodes the result on top of Default().
func Load(path string) (Configs, error) {
	raw := map[string]any{}
	if path != "" {
		if _, err := toml.DecodeFile(path, &raw); err != nil {
			return Configs{}, fmt.Errorf("cannot decode config file %s: %w", path, err)
		}
	}

	overlayEnv(raw, os.Environ())
	return decode(raw)
}

func decode(raw map[string]any) (Configs, error) {
	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Configs{}, err
	}

	if err := decoder.Decode(raw); err != nil {
		return Configs{}, fmt.Errorf("cannot decode configs: %w", err)
	}

	return cfg, nil
}

func overlayEnv(raw map[string]any, environ []string) {
	for _, kv := range environ {
		key, value, found := strings.Cut(kv, "=")
		if !found || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}

		path := strings.Split(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "__")
		node := raw
		for _, section := range path[:len(path)-1] {
			child, ok := node[section].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[section] = child
			}
			node = child
		}

		node[path[len(path)-1]] = value
	}
}
