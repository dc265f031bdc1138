package configs

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/bondfire/core/internal/config"
)

func deepMergeJSON(oldVal, newVal interface{}) interface{} {
	oldMap, oldIsMap := oldVal.(map[string]interface{})
	newMap, newIsMap := newVal.(map[string]interface{})
	if oldIsMap && newIsMap {
		out := make(map[string]interface{}, len(oldMap))
		for k, v := range oldMap {
			out[k] = v
		}
		for k, v := range newMap {
			if existing, ok := out[k]; ok {
				out[k] = deepMergeJSON(existing, v)
				continue
			}
			out[k] = v
		}
		return out
	}

	// Arrays are replaced as a whole.
	return newVal
}

func shouldEnableGeneration(partial map[string]json.RawMessage) bool {
	raw, ok := partial["ai"]
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return false
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return false
	}
	for _, field := range []string{"enable_generation", "enableGeneration"} {
		if enabled, ok := parseBoolFromAny(payload[field]); ok && enabled {
			return true
		}
	}
	return false
}

func hasEnabledAIProvider(providers []config.AIProvider) bool {
	for _, provider := range providers {
		if provider.Enabled {
			return true
		}
	}
	return false
}

func parseBoolFromAny(v interface{}) (bool, bool) {
	switch value := v.(type) {
	case bool:
		return value, true
	case string:
		switch strings.TrimSpace(strings.ToLower(value)) {
		case "1", "true", "yes", "on":
			return true, true
		case "0", "false", "no", "off":
			return false, true
		}
	case float64:
		return value != 0, true
	case int:
		return value != 0, true
	}
	return false, false
}
