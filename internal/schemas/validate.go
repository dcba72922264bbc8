// Package schemas validates matcher input documents against the JSON Schemas
// shipped in the repository's schemas directory.
package schemas

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	schemafiles "github.com/jonathan/candidate-matcher/schemas"
	"github.com/xeipuuv/gojsonschema"
)

// Schema names, matching <name>.schema.json files.
const (
	CandidateProfile = "candidate_profile"
	JobRequirement   = "job_requirement"
	Application      = "application"
	TrainingSet      = "training_set"
)

const schemaSuffix = ".schema.json"

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s validation failed:\n", ve.Schema)
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Validator holds compiled schemas by name.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compiles every *.schema.json file at the root of fsys. Schemas
// may reference each other by file name.
func NewValidator(fsys fs.FS) (*Validator, error) {
	files, err := fs.Glob(fsys, "*"+schemaSuffix)
	if err != nil {
		return nil, &SchemaLoadError{Path: "*" + schemaSuffix, Message: "glob failed", Cause: err}
	}

	raw := make(map[string][]byte, len(files))
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, &SchemaLoadError{Path: file, Message: "read failed", Cause: err}
		}
		raw[strings.TrimSuffix(path.Base(file), schemaSuffix)] = data
	}

	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(raw))}
	for name, data := range raw {
		sl := gojsonschema.NewSchemaLoader()
		sl.Draft = gojsonschema.Draft7
		for other, otherData := range raw {
			if other == name {
				continue
			}
			if err := sl.AddSchemas(gojsonschema.NewBytesLoader(otherData)); err != nil {
				return nil, &SchemaLoadError{Path: other + schemaSuffix, Message: "invalid referenced schema", Cause: err}
			}
		}
		schema, err := sl.Compile(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, &SchemaLoadError{Path: name + schemaSuffix, Message: "compile failed", Cause: err}
		}
		v.schemas[name] = schema
	}
	return v, nil
}

var defaultValidator = sync.OnceValues(func() (*Validator, error) {
	return NewValidator(schemafiles.FS)
})

// Default returns the validator over the embedded repository schemas.
func Default() (*Validator, error) {
	return defaultValidator()
}

// Names returns the compiled schema names, sorted.
func (v *Validator) Names() []string {
	names := make([]string, 0, len(v.schemas))
	for name := range v.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks a JSON document against the named schema.
func (v *Validator) Validate(name string, document []byte) error {
	schema, ok := v.schemas[name]
	if !ok {
		return &SchemaLoadError{Path: name + schemaSuffix, Message: "unknown schema"}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("failed to read %s document: %w", name, err)
	}
	if result.Valid() {
		return nil
	}
	return toValidationError(name, result)
}

// ValidateEach checks every element of a JSON array against the named schema.
// Field paths are prefixed with the element index.
func (v *Validator) ValidateEach(name string, document []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(document, &items); err != nil {
		return &ValidationError{
			Schema: name,
			Errors: []FieldError{{Field: "(root)", Message: "expected a JSON array"}},
		}
	}

	combined := &ValidationError{Schema: name}
	for i, item := range items {
		err := v.Validate(name, item)
		if err == nil {
			continue
		}
		ve, ok := err.(*ValidationError)
		if !ok {
			return err
		}
		for _, fe := range ve.Errors {
			fe.Field = fmt.Sprintf("[%d].%s", i, fe.Field)
			combined.Errors = append(combined.Errors, fe)
		}
	}
	if len(combined.Errors) > 0 {
		return combined
	}
	return nil
}

func toValidationError(name string, result *gojsonschema.Result) *ValidationError {
	validationErr := &ValidationError{
		Schema: name,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}

// Validate checks a document against a named schema using the default validator.
func Validate(name string, document []byte) error {
	v, err := Default()
	if err != nil {
		return err
	}
	return v.Validate(name, document)
}

// ValidateEach checks a JSON array of documents using the default validator.
func ValidateEach(name string, document []byte) error {
	v, err := Default()
	if err != nil {
		return err
	}
	return v.ValidateEach(name, document)
}
