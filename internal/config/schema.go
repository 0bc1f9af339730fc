package config

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// Schema builds the JSON schema of the room configuration document. Every key
// is optional so the same schema describes partial override bodies.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	schema := reflector.ReflectFromType(reflect.TypeOf(Config{}))
	schema.Version = jsonschema.Version
	schema.Title = "Horde Hunt Room Config"
	schema.Description = "Live rule set of a room. POST a partial document to /rooms/{id}/config to deep-merge it."
	return schema
}

// SchemaJSON renders Schema as indented JSON.
func SchemaJSON() ([]byte, error) {
	data, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal config schema: %w", err)
	}
	return data, nil
}
