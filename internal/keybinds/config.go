package keybinds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileName is the name of the user keybinding file inside the config directory
const FileName = "keybinds.json"

// Config represents the user's keybinding configuration.
// Each section maps an action to a comma-separated list of keys; an empty
// list unbinds the action in that section.
type Config struct {
	Version   string            `json:"version"`
	Global    map[string]string `json:"global,omitempty"`
	Menu      map[string]string `json:"menu,omitempty"`
	List      map[string]string `json:"list,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
	Form      map[string]string `json:"form,omitempty"`
	TextInput map[string]string `json:"text_input,omitempty"`
	Editor    map[string]string `json:"editor,omitempty"`
	Confirm   map[string]string `json:"confirm,omitempty"`
}

// sections pairs every context with its config section
func (c *Config) sections() map[Context]*map[string]string {
	return map[Context]*map[string]string{
		ContextGlobal:    &c.Global,
		ContextMenu:      &c.Menu,
		ContextList:      &c.List,
		ContextDetail:    &c.Detail,
		ContextForm:      &c.Form,
		ContextTextInput: &c.TextInput,
		ContextEditor:    &c.Editor,
		ContextConfirm:   &c.Confirm,
	}
}

// LoadConfig loads keybinding configuration from a JSON file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid %s format: %w", FileName, err)
	}

	return &config, nil
}

// SaveConfig saves keybinding configuration to a JSON file
func SaveConfig(config *Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// splitKeys turns "up, k" into ["up", "k"]
func splitKeys(keys string) []string {
	var out []string
	for _, key := range strings.Split(keys, ",") {
		if key = strings.TrimSpace(key); key != "" {
			out = append(out, key)
		}
	}
	return out
}

// ApplyConfig applies user configuration to a registry.
// The configured keys replace every default key of that action in that context.
func ApplyConfig(registry *Registry, config *Config) error {
	for context, section := range config.sections() {
		for actionStr, keys := range *section {
			action := Action(actionStr)
			if !action.IsKnown() {
				return fmt.Errorf("unknown action %q in section %q", actionStr, context)
			}

			for key, bound := range registry.bindings[context] {
				if bound == action {
					registry.Unbind(context, key)
				}
			}
			for _, key := range splitKeys(keys) {
				if err := ValidateKey(key); err != nil {
					return fmt.Errorf("section %q, action %q: %w", context, actionStr, err)
				}
				registry.Register(context, key, action)
			}
		}
	}

	return nil
}

// LoadOrDefault loads user config if it exists, otherwise returns default registry
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()

	if _, err := os.Stat(configPath); err != nil {
		// No config is fine, use defaults
		return registry, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", FileName, err)
	}

	if result := NewValidator().ValidateConfig(config); result.HasErrors() {
		return nil, fmt.Errorf("invalid %s:\n%s", FileName, result)
	}

	if err := ApplyConfig(registry, config); err != nil {
		return nil, fmt.Errorf("failed to apply %s: %w", FileName, err)
	}

	return registry, nil
}

// ExportConfig writes every binding of the registry as a config, so users can
// start from the effective bindings
func ExportConfig(registry *Registry) *Config {
	config := &Config{Version: "1.0"}

	for context, section := range config.sections() {
		byAction := make(map[Action][]string)
		for key, action := range registry.bindings[context] {
			byAction[action] = append(byAction[action], key)
		}
		if len(byAction) == 0 {
			continue
		}

		*section = make(map[string]string, len(byAction))
		for action, keys := range byAction {
			sort.Strings(keys)
			(*section)[string(action)] = strings.Join(keys, ",")
		}
	}

	return config
}
