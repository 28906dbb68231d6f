package structured

import "strings"

// Instruction renders the schema instruction appended to the system prompt.
func Instruction(d *Descriptor) string {
	schemaJSON, err := d.JSONSchema().ToJSONIndent()
	if err != nil {
		schemaJSON = []byte("{}")
	}

	var sb strings.Builder
	sb.WriteString("Respond with a single JSON object that conforms to the schema below.\n")
	sb.WriteString("Do not include any text before or after the JSON.\n")
	sb.WriteString("Do not wrap the JSON in markdown code blocks.\n")
	sb.WriteString("Include every required field and respect every minimum and maximum.\n\n")
	for _, f := range d.fields {
		if f.Description == "" {
			continue
		}
		sb.WriteString("- ")
		sb.WriteString(f.Name)
		sb.WriteString(": ")
		sb.WriteString(f.Description)
		sb.WriteString("\n")
	}
	sb.WriteString("\nJSON Schema:\n")
	sb.Write(schemaJSON)
	sb.WriteString("\n")
	return sb.String()
}
