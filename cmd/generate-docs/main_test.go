package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/drew/studydash/internal/config"
)

func findField(t *testing.T, docs []SectionDoc, section, name string) FieldDoc {
	t.Helper()
	for _, s := range docs {
		if s.Name != section {
			continue
		}
		for _, f := range s.Fields {
			if f.Name == name {
				return f
			}
		}
	}
	t.Fatalf("field %s.%s not documented", section, name)
	return FieldDoc{}
}

func TestBuildDocumentation(t *testing.T) {
	docs := buildDocumentation()

	backend := findField(t, docs, "server", "backend")
	if !backend.Required || backend.Default != `"http://localhost:5000"` {
		t.Errorf("Unexpected backend doc %+v", backend)
	}

	format := findField(t, docs, "logging", "format")
	if strings.Join(format.ValidValues, ",") != "auto,text,json" {
		t.Errorf("Unexpected format values %v", format.ValidValues)
	}

	keywords := findField(t, docs, "table", "filterKeywords")
	if keywords.Type != "[]string" || !strings.HasPrefix(keywords.Default, `["*status*", `) {
		t.Errorf("Unexpected keywords doc %+v", keywords)
	}

	icons := findField(t, docs, "groups.<id>", "icons")
	if icons.Default != `["fas fa-bell", "fas fa-comment-slash"]` {
		t.Errorf("Unexpected icons default %q", icons.Default)
	}
}

func TestExampleTOMLIsValidConfig(t *testing.T) {
	example := generateExampleTOML(buildDocumentation())

	var cfg config.Config
	md, err := toml.Decode(example, &cfg)
	if err != nil {
		t.Fatalf("Example does not parse: %v\n%s", err, example)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		t.Errorf("Example has unknown keys: %v", undecoded)
	}
	if cfg.Server.Backend != "http://localhost:5000" {
		t.Errorf("Backend = %q", cfg.Server.Backend)
	}
	if cfg.Tables["users"].Source != "/users/download-users" {
		t.Errorf("Users table source = %q", cfg.Tables["users"].Source)
	}
}

func TestJSONSchema(t *testing.T) {
	var schema map[string]any
	if err := json.Unmarshal([]byte(generateJSONSchema(buildDocumentation())), &schema); err != nil {
		t.Fatalf("Schema is not JSON: %v", err)
	}

	props := schema["properties"].(map[string]any)
	for _, name := range []string{"server", "logging", "table", "tables", "groups"} {
		if _, ok := props[name]; !ok {
			t.Errorf("Schema missing %s", name)
		}
	}

	table := props["table"].(map[string]any)["properties"].(map[string]any)
	size := table["defaultPageSize"].(map[string]any)
	if size["default"] != float64(10) {
		t.Errorf("defaultPageSize default = %v", size["default"])
	}
	if len(size["enum"].([]any)) != 5 {
		t.Errorf("defaultPageSize enum = %v", size["enum"])
	}
}

func TestMarkdownDocs(t *testing.T) {
	md := generateMarkdownDocs(buildDocumentation())
	for _, want := range []string{
		"### `[server]`",
		"| `backend` | string | **Yes** | `\"http://localhost:5000\"` |",
		"### `[tables.<name>]`",
		"(valid: `csv`, `html`)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q", want)
		}
	}
}
