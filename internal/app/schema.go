package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/pelletier/go-toml/v2"
	jsonschemav5 "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const settingsSchemaID = "schema://interstitial/settings"

// SettingsSchema returns the JSON Schema for the settings file, reflected from Settings.
func SettingsSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		Anonymous:                  true,
	}
	schema := reflector.Reflect(&Settings{})

	b, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings schema: %w", err)
	}
	return b, nil
}

// ValidateSettingsFile validates a config file against SettingsSchema and the
// interrupt rules checked by ValidateInterrupts.
func ValidateSettingsFile(path string) error {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: explicit path from the CLI
	if err != nil {
		return err
	}

	var doc map[string]any
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(raw, &doc)
	} else {
		err = yaml.Unmarshal(raw, &doc)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	if err := validateAgainstSchema(doc); err != nil {
		return err
	}

	s, err := loadSettingsFile(path)
	if err != nil {
		return err
	}
	return ValidateInterrupts(s.Interrupts)
}

func validateAgainstSchema(doc map[string]any) error {
	schemaBytes, err := SettingsSchema()
	if err != nil {
		return err
	}

	compiler := jsonschemav5.NewCompiler()
	if err := compiler.AddResource(settingsSchemaID, bytes.NewReader(schemaBytes)); err != nil {
		return fmt.Errorf("failed to add settings schema: %w", err)
	}
	schema, err := compiler.Compile(settingsSchemaID)
	if err != nil {
		return fmt.Errorf("failed to compile settings schema: %w", err)
	}

	// Round-trip through JSON so YAML/TOML scalar types match what the validator expects.
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	var generic any
	if err := json.Unmarshal(docJSON, &generic); err != nil {
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if err := schema.Validate(generic); err != nil {
		return fmt.Errorf("settings validation failed: %w", err)
	}
	return nil
}
