// internal/content/tiers/schema.go
package tiers

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// draftSchema is the contract every network provider must satisfy.
// Subheadline is optional; everything else is required and non-empty.
const draftSchema = `{
	"type": "object",
	"required": ["headline", "caption", "cta", "hashtags"],
	"properties": {
		"headline":    {"type": "string", "minLength": 1},
		"subheadline": {"type": "string"},
		"caption":     {"type": "string", "minLength": 1},
		"cta":         {"type": "string", "minLength": 1},
		"hashtags": {
			"type": "array",
			"items": {"type": "string", "minLength": 1}
		}
	}
}`

var draftSchemaLoader = gojsonschema.NewStringLoader(draftSchema)

func validateDraftDocument(raw []byte) error {
	result, err := gojsonschema.Validate(draftSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation: %v", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return fmt.Errorf("invalid draft: %s", strings.Join(details, "; "))
	}
	return nil
}
