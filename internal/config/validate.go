package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidConfig is returned when a loaded config fails schema validation.
var ErrInvalidConfig = errors.New("invalid config")

//go:embed config.schema.json
var schemaJSON []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

func configSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("config.schema.json", bytes.NewReader(schemaJSON)); err != nil {
			compileErr = fmt.Errorf("failed to load config schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("config.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("failed to compile config schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// Validate checks the decoded config against the embedded JSON schema.
// Values are checked after env and file merging, so a bad environment
// override fails the same way a bad file does.
func (c *Config) Validate() error {
	schema, err := configSchema()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config for validation: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode config for validation: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// SchemaJSON returns the JSON schema config files are validated against.
func SchemaJSON() []byte {
	return bytes.Clone(schemaJSON)
}
