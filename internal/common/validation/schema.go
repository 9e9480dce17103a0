package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ChatRequestSchema describes the body of POST /api/chat/client.
const ChatRequestSchema = `{
  "type": "object",
  "required": ["message"],
  "properties": {
    "message": {"type": "string", "minLength": 1}
  }
}`

var chatRequestSchema = mustSchema(ChatRequestSchema)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error joins the individual failures into one line.
func (r *ValidationResult) Error() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// ValidateChatRequest checks body against ChatRequestSchema and returns the
// message on success.
func ValidateChatRequest(body []byte) (string, *ValidationResult) {
	result := Validate(chatRequestSchema, body)
	if !result.Valid {
		return "", result
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return "", invalid("(root)", err.Error(), "INVALID_JSON")
	}
	return req.Message, result
}

// Validate runs a compiled schema against a raw JSON document.
func Validate(schema *gojsonschema.Schema, body []byte) *ValidationResult {
	if len(strings.TrimSpace(string(body))) == 0 {
		return invalid("(root)", "request body is empty", "EMPTY_BODY")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return invalid("(root)", err.Error(), "INVALID_JSON")
	}
	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return &ValidationResult{Valid: false, Errors: errs}
}

func invalid(field, message, code string) *ValidationResult {
	return &ValidationResult{
		Valid:  false,
		Errors: []ValidationError{{Field: field, Message: message, Code: code}},
	}
}

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return schema
}
