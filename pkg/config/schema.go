package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ErrSchema is returned when a configuration file violates the schema.
var ErrSchema = errors.New("configuration does not match schema")

//go:embed schema.json
var schemaJSON []byte

// SchemaError lists every schema violation of one file.
type SchemaError struct {
	File     string
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %v:\n  - %s", e.File, ErrSchema, strings.Join(e.Problems, "\n  - "))
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// Schema returns the embedded JSON schema for configuration files.
func Schema() []byte {
	return append([]byte(nil), schemaJSON...)
}

// ValidateFile checks a JSON or YAML configuration file against the schema.
// Files in other formats are accepted unchecked.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	doc, err := decodeDocument(path, data)
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	// An empty file carries no settings; defaults apply.
	if doc == nil {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation of %s: %w", path, err)
	}

	if result.Valid() {
		return nil
	}

	schemaErr := &SchemaError{File: path}
	for _, verr := range result.Errors() {
		schemaErr.Problems = append(schemaErr.Problems, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return schemaErr
}

func decodeDocument(path string, data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil //nolint:nilnil // empty documents are valid
	}

	var doc any

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()

		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	default:
		// Other formats viper reads are not schema-checked.
		return nil, nil //nolint:nilnil // nothing to validate
	}

	return doc, nil
}
