package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/mattsolo1/grove-widget/cmd"
	"github.com/mattsolo1/grove-widget/pkg/devserver"
)

func main() {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	schema := r.Reflect(&cmd.WidgetConfig{})
	schema.Title = "Grove Widget Configuration"
	schema.Description = "Schema for the 'widget' extension in grove.yml."

	// Make all fields optional - Grove configs should not require any fields
	schema.Required = nil

	writeSchema("widget.schema.json", schema)

	clinicsSchema := r.Reflect(&devserver.ClinicsFile{})
	clinicsSchema.Title = "Grove Widget Clinic Profiles"
	clinicsSchema.Description = "Schema for the clinic profiles file read by 'widget serve'."
	writeSchema("widget-clinics.schema.json", clinicsSchema)
}

func writeSchema(path string, schema *jsonschema.Schema) {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("Error marshaling schema: %v", err)
	}

	// Write to the package root
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Successfully generated schema at %s", path)
}
