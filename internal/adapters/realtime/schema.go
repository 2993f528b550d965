package realtime

import (
	"fmt"
	"strings"

	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/xeipuuv/gojsonschema"
)

// Payload schemas of the frames a client may send, keyed by event.
var frameSchemas = map[string]string{
	portssvc.ChatEventMessage: `{
		"type": "object",
		"required": ["messageID", "receiverID", "body"],
		"properties": {
			"messageID":  {"type": "string", "minLength": 1, "maxLength": 64},
			"receiverID": {"type": "string", "minLength": 1, "maxLength": 64},
			"body":       {"type": "string", "minLength": 1, "maxLength": 4000}
		}
	}`,
	portssvc.ChatEventDelivered: `{
		"type": "object",
		"required": ["messageID"],
		"properties": {
			"messageID": {"type": "string", "minLength": 1, "maxLength": 64}
		}
	}`,
	portssvc.ChatEventTyping: `{
		"type": "object",
		"required": ["receiverID"],
		"properties": {
			"receiverID": {"type": "string", "minLength": 1, "maxLength": 64}
		}
	}`,
}

type frameValidator struct {
	schemas map[string]*gojsonschema.Schema
}

func newFrameValidator() (*frameValidator, error) {
	v := &frameValidator{schemas: make(map[string]*gojsonschema.Schema, len(frameSchemas))}
	for event, raw := range frameSchemas {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid schema for %s frames: %w", event, err)
		}
		v.schemas[event] = schema
	}
	return v, nil
}

// validate checks the payload of an inbound frame against the schema of its event.
func (v *frameValidator) validate(event string, payload []byte) error {
	schema, ok := v.schemas[event]
	if !ok {
		return fmt.Errorf("unsupported event %q", event)
	}
	if len(payload) == 0 {
		return fmt.Errorf("%s frame has no data", event)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("malformed %s frame: %w", event, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("invalid %s frame: %s", event, strings.Join(errs, "; "))
	}
	return nil
}
