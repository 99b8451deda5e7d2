// Package schemas checks candidate record files against the bundled JSON Schema.
// Findings are reported per record so a caller can warn about bad rows and still rank the rest.
package schemas

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// CandidateRecordsSchema is the repo-relative path of the candidate file schema.
const CandidateRecordsSchema = "schemas/candidate_records.schema.json"

// ResolveSchemaPath finds a repo-relative schema from the working directory or up to two
// parents, so the CLI and package tests resolve the same file. It returns "" when absent.
func ResolveSchemaPath(relativePath string) string {
	candidates := []string{
		relativePath,
		filepath.Join("..", relativePath),
		filepath.Join("..", "..", relativePath),
	}

	for _, candidate := range candidates {
		if absPath, err := filepath.Abs(candidate); err == nil {
			if _, err := os.Stat(absPath); err == nil {
				return absPath
			}
		}
	}

	return ""
}

// ValidationError lists every schema violation found in a candidate file.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is one violation. Field is the schema path, e.g. "2.match_score";
// Record is the index of the offending candidate record, or -1 for the document itself.
type FieldError struct {
	Field     string
	Record    int
	Attribute string
	Message   string
}

// newFieldError splits a schema path into the record index and the candidate attribute.
func newFieldError(field, message string) FieldError {
	fe := FieldError{Field: field, Record: -1, Message: message}
	head, rest, _ := strings.Cut(field, ".")
	if idx, err := strconv.Atoi(head); err == nil && idx >= 0 {
		fe.Record = idx
		fe.Attribute = rest
	}
	return fe
}

// InvalidRecords returns the sorted, distinct indexes of records with at least one violation.
func (ve *ValidationError) InvalidRecords() []int {
	var out []int
	for _, fe := range ve.Errors {
		if fe.Record >= 0 && !slices.Contains(out, fe.Record) {
			out = append(out, fe.Record)
		}
	}
	slices.Sort(out)
	return out
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

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, fe := range ve.Errors {
		switch {
		case fe.Record < 0:
			sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, fe.Field, fe.Message))
		case fe.Attribute == "":
			sb.WriteString(fmt.Sprintf("  %d. record %d: %s\n", i+1, fe.Record, fe.Message))
		default:
			sb.WriteString(fmt.Sprintf("  %d. record %d %s: %s\n", i+1, fe.Record, fe.Attribute, fe.Message))
		}
	}
	return sb.String()
}

// ValidateCandidateFile checks a JSON array of candidate records against the bundled schema.
// It returns a SchemaLoadError when the schema cannot be found or loaded.
func ValidateCandidateFile(jsonPath string) error {
	schemaPath := ResolveSchemaPath(CandidateRecordsSchema)
	if schemaPath == "" {
		return &SchemaLoadError{Path: CandidateRecordsSchema, Message: "schema file not found"}
	}
	return ValidateJSON(schemaPath, jsonPath)
}

// ValidateJSON validates a JSON file against a JSON Schema file.
func ValidateJSON(schemaPath, jsonPath string) error {
	schemaAbsPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to resolve schema path: %w", err)
	}

	jsonAbsPath, err := filepath.Abs(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to resolve JSON path: %w", err)
	}

	if _, err := os.Stat(schemaAbsPath); os.IsNotExist(err) {
		return fmt.Errorf("schema file not found: %s", schemaAbsPath)
	}

	if _, err := os.Stat(jsonAbsPath); os.IsNotExist(err) {
		return fmt.Errorf("JSON file not found: %s", jsonAbsPath)
	}

	schemaLoader := gojsonschema.NewReferenceLoader("file://" + schemaAbsPath)
	documentLoader := gojsonschema.NewReferenceLoader("file://" + jsonAbsPath)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    schemaAbsPath,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	return resultError(result)
}

// ValidateJSONString validates a JSON document held in memory against an in-memory schema.
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	return resultError(result)
}

// resultError converts a failed result into a ValidationError, or nil when valid.
func resultError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, newFieldError(field, desc.Description()))
	}
	return validationErr
}
