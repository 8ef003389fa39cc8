package gamedata

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Load reads and unmarshals a JSON file from the embedded filesystem.
func Load[T any](filename string) (T, error) {
	var result T

	content, err := dataFS.ReadFile(filename)
	if err != nil {
		return result, fmt.Errorf("failed to read embedded file %s: %w", filename, err)
	}

	if err := json.Unmarshal(content, &result); err != nil {
		return result, fmt.Errorf("failed to parse JSON from %s: %w", filename, err)
	}

	return result, nil
}

// Decode validates content against the embedded schema file and then
// unmarshals it. name is used in error messages only.
func Decode[T any](name string, content []byte, schemaFile string) (T, error) {
	var result T

	schema, err := compileSchema(schemaFile)
	if err != nil {
		return result, err
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return result, fmt.Errorf("failed to parse JSON from %s: %w", name, err)
	}
	if err := schema.Validate(doc); err != nil {
		return result, fmt.Errorf("%s does not match %s: %w", name, schemaFile, err)
	}

	if err := json.Unmarshal(content, &result); err != nil {
		return result, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return result, nil
}

// LoadValidated is Load with schema validation.
func LoadValidated[T any](filename, schemaFile string) (T, error) {
	var result T

	content, err := dataFS.ReadFile(filename)
	if err != nil {
		return result, fmt.Errorf("failed to read embedded file %s: %w", filename, err)
	}
	return Decode[T](filename, content, schemaFile)
}

func compileSchema(schemaFile string) (*jsonschema.Schema, error) {
	content, err := dataFS.ReadFile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded schema %s: %w", schemaFile, err)
	}
	schema, err := jsonschema.CompileString(schemaFile, string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", schemaFile, err)
	}
	return schema, nil
}
