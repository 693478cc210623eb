package schema

import "testing"

func TestCommandRequestSchemaRequiresArgv(t *testing.T) {
	t.Parallel()

	schemaMap, err := CommandRequestSchema()
	if err != nil {
		t.Fatalf("CommandRequestSchema returned error: %v", err)
	}

	required, ok := schemaMap["required"].([]any)
	if !ok {
		t.Fatalf("expected required list to be present")
	}

	var argvRequired bool
	for _, value := range required {
		if str, _ := value.(string); str == "argv" {
			argvRequired = true
			break
		}
	}
	if !argvRequired {
		t.Fatalf("expected argv to be marked as required")
	}

	properties, ok := schemaMap["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected schema properties to be present")
	}

	argv, ok := properties["argv"].(map[string]any)
	if !ok {
		t.Fatalf("expected argv property to be defined")
	}
	if typ, _ := argv["type"].(string); typ != "array" {
		t.Fatalf("expected argv to be an array, got %q", typ)
	}

	timeout, ok := properties["timeout_seconds"].(map[string]any)
	if !ok {
		t.Fatalf("expected timeout_seconds property to be defined")
	}
	if typ, _ := timeout["type"].(string); typ != "number" {
		t.Fatalf("expected timeout_seconds to be a number, got %q", typ)
	}
}
