package httphandler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// assessRequestSchema describes the body of POST /api/v1/assess. Category
// membership is left to the vocabulary so that the set of accepted labels
// always matches the loaded model.
const assessRequestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"additionalProperties": false,
	"required": ["income_total", "years_employed", "income_type", "cnt_children", "flag_own_car", "flag_own_realty"],
	"properties": {
		"income_total":    {"type": "number", "minimum": 0},
		"years_employed":  {"type": "number", "minimum": 0, "maximum": 100},
		"income_type":     {"type": "string", "minLength": 1, "maxLength": 64},
		"cnt_children":    {"type": "integer", "minimum": 0, "maximum": 50},
		"flag_own_car":    {"type": "string", "minLength": 1, "maxLength": 8},
		"flag_own_realty": {"type": "string", "minLength": 1, "maxLength": 8}
	}
}`

var assessSchema = mustCompileSchema(assessRequestSchema)

const rootField = "(root)"

func mustCompileSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return s
}

// SchemaError reports a request body that does not match the assess schema.
// Field is the first offending property, or empty for body-level problems.
type SchemaError struct {
	Field   string
	Reasons []string
}

func (e *SchemaError) Error() string {
	return "invalid request body: " + strings.Join(e.Reasons, "; ")
}

// validateAssessRequest checks body against the assess schema.
func validateAssessRequest(body []byte) error {
	result, err := assessSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &SchemaError{Reasons: []string{"body is not valid JSON"}}
	}

	if result.Valid() {
		return nil
	}

	schemaErr := &SchemaError{Reasons: make([]string, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		// Missing and unexpected properties are reported against the root
		// with the property name in the details.
		field := desc.Field()
		if field == rootField {
			field, _ = desc.Details()["property"].(string)
		}
		if schemaErr.Field == "" {
			schemaErr.Field = field
		}
		schemaErr.Reasons = append(schemaErr.Reasons, desc.String())
	}
	return schemaErr
}

// isSchemaError reports whether err is a *SchemaError.
func isSchemaError(err error) (*SchemaError, bool) {
	var schemaErr *SchemaError
	ok := errors.As(err, &schemaErr)
	return schemaErr, ok
}
