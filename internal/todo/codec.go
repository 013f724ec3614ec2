package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaName is the resource name of the embedded schema.
const SchemaName = "tasks.schema.json"

//go:embed tasks.schema.json
var embeddedSchema string

// EmbeddedSchema returns the JSON Schema for the stored task list.
func EmbeddedSchema() string {
	return embeddedSchema
}

// DeserializationError reports a stored task list that is not well-formed.
type DeserializationError struct {
	Path string // JSON path to the error location, e.g. [2].completed
	Err  error
}

func (e *DeserializationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("decode tasks: %s: %s", e.Path, e.Err)
	}
	return fmt.Sprintf("decode tasks: %s", e.Err)
}

// Unwrap returns the underlying error.
func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// Encode serializes the whole list to its stored form.
func Encode(l List) ([]byte, error) {
	if l == nil {
		l = List{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return data, nil
}

// EncodeIndent is Encode with 2-space indentation and a trailing newline.
func EncodeIndent(l List) ([]byte, error) {
	if l == nil {
		l = List{}
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return append(data, '\n'), nil
}

// Validator decodes stored task lists against a compiled schema.
type Validator struct {
	schema *jsonschema.Schema
	source string
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// DefaultValidator returns the validator for the embedded schema.
func DefaultValidator() *Validator {
	defaultOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true
		if err := compiler.AddResource(SchemaName, strings.NewReader(embeddedSchema)); err != nil {
			panic(fmt.Sprintf("todo: embedded schema: %v", err))
		}
		schema, err := compiler.Compile(SchemaName)
		if err != nil {
			panic(fmt.Sprintf("todo: embedded schema: %v", err))
		}
		defaultValidator = &Validator{schema: schema, source: "embedded"}
	})
	return defaultValidator
}

// NewValidator compiles the schema at schemaPath. An empty path selects the
// embedded schema. When the file is missing or does not compile, the
// embedded schema is used and the reason is returned as a warning.
func NewValidator(schemaPath string) (*Validator, []string) {
	if schemaPath == "" {
		return DefaultValidator(), nil
	}

	var warnings []string
	absPath, err := filepath.Abs(schemaPath)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("invalid schema path: %v", err))
		return DefaultValidator(), warnings
	}

	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			warnings = append(warnings, fmt.Sprintf("schema file not found: %s", absPath))
		} else {
			warnings = append(warnings, fmt.Sprintf("failed to read schema file: %v", err))
		}
		return DefaultValidator(), append(warnings, "using embedded schema")
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	schema, err := compiler.Compile(absPath)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("invalid schema file: %v", err))
		return DefaultValidator(), append(warnings, "using embedded schema")
	}

	return &Validator{schema: schema, source: absPath}, nil
}

// Source names the schema in use: "embedded" or the schema file path.
func (v *Validator) Source() string {
	return v.source
}

// Decode parses and validates a stored task list.
func Decode(data []byte) (List, error) {
	return DefaultValidator().Decode(data)
}

// Decode parses and validates a stored task list. Any failure is returned
// as a *DeserializationError.
func (v *Validator) Decode(data []byte) (List, error) {
	if errs := v.Validate(data); len(errs) > 0 {
		return nil, errs[0]
	}

	var l List
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, &DeserializationError{Err: err}
	}
	if l == nil {
		l = List{}
	}
	return l, nil
}

// Validate runs every validation pass and returns all errors found.
// Each error is a *DeserializationError.
func (v *Validator) Validate(data []byte) []error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []error{&DeserializationError{Err: fmt.Errorf("empty document")}}
	}

	var doc interface{}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return []error{&DeserializationError{Err: fmt.Errorf("parse tasks: %w", err)}}
	}

	var errs []error
	if err := v.schema.Validate(doc); err != nil {
		errs = appendSchemaErrors(errs, err)
		return errs
	}

	var l List
	if err := json.Unmarshal(trimmed, &l); err != nil {
		return []error{&DeserializationError{Err: err}}
	}
	return append(errs, validateMinimal(l)...)
}

// validateMinimal checks what the schema cannot: ids are non-empty and unique.
func validateMinimal(l List) []error {
	var errs []error
	seen := make(map[string]int, len(l))
	for i, t := range l {
		path := fmt.Sprintf("[%d].id", i)
		if t.ID == "" {
			errs = append(errs, &DeserializationError{
				Path: path,
				Err:  fmt.Errorf("missing required field"),
			})
			continue
		}
		if first, dup := seen[t.ID]; dup {
			errs = append(errs, &DeserializationError{
				Path: path,
				Err:  fmt.Errorf("duplicate id %q (first at [%d])", t.ID, first),
			})
			continue
		}
		seen[t.ID] = i
	}
	return errs
}

func appendSchemaErrors(errs []error, err error) []error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return append(errs, &DeserializationError{Err: err})
	}
	return collectSchemaErrors(errs, ve)
}

func collectSchemaErrors(errs []error, err *jsonschema.ValidationError) []error {
	if err == nil {
		return errs
	}

	if len(err.Causes) == 0 {
		return append(errs, &DeserializationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
	}

	for _, cause := range err.Causes {
		errs = collectSchemaErrors(errs, cause)
	}
	return errs
}

// jsonPointerToPath renders a JSON pointer such as /2/completed as [2].completed.
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
