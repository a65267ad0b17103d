package validator

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const listingSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"additionalProperties": false,
	"required": ["title", "description", "category", "tags"],
	"properties": {
		"title": {"type": "string", "minLength": 1, "maxLength": 200},
		"description": {"type": "string", "minLength": 1},
		"category": {"type": "string", "enum": ["job", "internship", "project"]},
		"tags": {
			"type": "array",
			"minItems": 1,
			"maxItems": 20,
			"items": {"type": "string", "minLength": 1, "maxLength": 50}
		}
	}
}`

var listingSchema = mustSchema(listingSchemaJSON)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("validator: bad schema: %v", err))
	}
	return s
}

// ValidateListingDocument checks a raw create-listing request body against the
// listing schema before it is decoded.
func ValidateListingDocument(body []byte) (ValidationErrors, error) {
	res, err := listingSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, err
	}

	errs := make(ValidationErrors)
	for _, e := range res.Errors() {
		errs.Add(schemaField(e), e.Description())
	}
	return errs, nil
}

// schemaField maps a schema error to the request field it concerns, so
// "tags.3" becomes "tags" and a missing property is reported under its own name.
func schemaField(e gojsonschema.ResultError) string {
	if e.Type() == "required" {
		if p, ok := e.Details()["property"].(string); ok {
			return p
		}
	}
	if e.Type() == "additional_property_not_allowed" {
		if p, ok := e.Details()["property"].(string); ok {
			return p
		}
	}
	field, _, _ := strings.Cut(e.Field(), ".")
	return field
}
