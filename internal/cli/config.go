package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultEnvFile = ".env"
	envPrefix      = "CONTRACT2SDK_"
)

// applyEnvDefaults layers CONTRACT2SDK_* values onto cfg. Values come from
// the dotenv file first; the process environment wins over the file. A
// missing default file is not an error.
func applyEnvDefaults(cfg *GenerateConfig, envFile string, explicit bool) error {
	values := map[string]string{}
	if envFile != "" {
		fileValues, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			values = fileValues
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return newUsageError(fmt.Sprintf("read env file %q: %v", envFile, err))
		}
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, envPrefix) {
			values[k] = v
		}
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.HasPrefix(k, envPrefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	// Unrelated CONTRACT2SDK_* variables are tolerated.
	for _, k := range keys {
		if _, err := cfg.apply(strings.TrimPrefix(k, envPrefix), values[k]); err != nil {
			return newUsageError(fmt.Sprintf("environment %s: %v", k, err))
		}
	}
	return nil
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		known, err := cfg.apply(key, raw[key])
		if err != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
		if !known {
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}
	return nil
}

// apply sets one setting by its config key. Keys are matched ignoring case,
// dashes and underscores so "packageName", "package-name" and PACKAGE_NAME
// are the same key.
func (c *GenerateConfig) apply(key string, value any) (bool, error) {
	var err error
	switch normalizeKey(key) {
	case "input":
		c.Input, err = valueAsString(value)
	case "format":
		c.Format, err = valueAsString(value)
	case "targets", "target":
		c.Targets, err = valueAsStringSlice(value)
	case "out":
		c.Out, err = valueAsString(value)
	case "typemaps", "typemap":
		c.TypeMaps, err = valueAsStringSlice(value)
	case "docs":
		c.Docs, err = valueAsString(value)
	case "packagename":
		c.PackageName, err = valueAsString(value)
	case "overrides", "override":
		c.Overrides, err = valueAsStringMap(value)
	case "includeinternal":
		c.IncludeInternal, err = valueAsBool(value)
	case "prunetypes":
		c.PruneTypes, err = valueAsBool(value)
	case "dumpmodel":
		c.DumpModel, err = valueAsBool(value)
	case "concurrency":
		c.Concurrency, err = valueAsInt(value)
	case "dryrun":
		c.DryRun, err = valueAsBool(value)
	case "force":
		c.Force, err = valueAsBool(value)
	case "verbose":
		c.Verbose, err = valueAsBool(value)
	default:
		return false, nil
	}
	return true, err
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return sanitizeList(strings.Split(val, ",")), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			items = append(items, str)
		}
		return sanitizeList(items), nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

// valueAsStringMap accepts a mapping or "Key=Value,Key2=Value2".
func valueAsStringMap(v any) (map[string]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		out := map[string]string{}
		for _, pair := range sanitizeList(strings.Split(val, ",")) {
			k, v, ok := strings.Cut(pair, "=")
			if !ok || strings.TrimSpace(k) == "" {
				return nil, fmt.Errorf("expected key=value, got %q", pair)
			}
			out[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
		return out, nil
	case map[string]any:
		out := make(map[string]string, len(val))
		for k, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = str
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected mapping, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func valueAsInt(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("invalid integer value %q", val)
		}
		return n, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

// sanitizeList trims entries and drops blanks and duplicates.
func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
