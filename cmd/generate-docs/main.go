// Copyright 2025 Andrew Khoury
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// generate-docs generates documentation from config structs using reflection
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/drew/studydash/internal/config"
)

// FieldDoc represents documentation for a single field
type FieldDoc struct {
	Name        string
	Type        string
	Required    bool
	Default     string
	Description string
	ValidValues []string
}

// SectionDoc represents documentation for a config section
type SectionDoc struct {
	Name        string
	Description string
	// Example is the TOML table header used in the example file
	Example string
	Fields  []FieldDoc
}

func main() {
	outDir := pflag.StringP("out", "o", ".", "Directory to write the generated files to")
	pflag.Usage = func() {
		fmt.Println("Usage: generate-docs [--out DIR]")
		fmt.Println("Generates documentation from config structs:")
		fmt.Println("  - studydash.example.toml")
		fmt.Println("  - config.schema.json")
		fmt.Println("  - CONFIG.md")
	}
	pflag.Parse()

	docs := buildDocumentation()

	steps := []struct {
		file string
		gen  func([]SectionDoc) string
	}{
		{"studydash.example.toml", generateExampleTOML},
		{"config.schema.json", generateJSONSchema},
		{"CONFIG.md", generateMarkdownDocs},
	}

	for _, step := range steps {
		path := filepath.Join(*outDir, step.file)
		if err := writeFile(path, step.gen(docs)); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating %s: %v\n", step.file, err)
			os.Exit(1)
		}
		fmt.Printf("✓ Generated %s\n", step.file)
	}
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

func buildDocumentation() []SectionDoc {
	defaults := config.GetDefaults()
	users := defaults.Tables["users"]
	group := defaults.Groups["1"]

	return []SectionDoc{
		extractSection("server", "Dashboard server and backend connection", "[server]", defaults.Server, defaults.Server),
		extractSection("logging", "Structured logging", "[logging]", defaults.Logging, defaults.Logging),
		extractSection("table", "Defaults for every data table", "[table]", defaults.Table, defaults.Table),
		extractSection("tables.<name>", "A data table page served at /tables/<name>", "[tables.users]", config.TableSource{}, users),
		extractSection("groups.<id>", "Static description of one study group. The id is the backend's study_group value.", "[groups.1]", config.GroupConfig{}, group),
	}
}

// extractSection uses reflection to extract field documentation from struct tags
func extractSection(name, description, example string, value any, defaultValue any) SectionDoc {
	section := SectionDoc{
		Name:        name,
		Description: description,
		Example:     example,
		Fields:      []FieldDoc{},
	}

	t := reflect.TypeOf(value)
	v := reflect.ValueOf(defaultValue)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if !field.IsExported() {
			continue
		}

		docTag := field.Tag.Get("doc")
		tomlTag := field.Tag.Get("toml")
		if docTag == "" || tomlTag == "" {
			continue
		}

		fieldDoc := FieldDoc{
			Name:        tomlTag,
			Type:        getFieldType(field.Type),
			Required:    field.Tag.Get("required") == "true",
			Description: docTag,
			Default:     getDefaultValue(v.Field(i), field.Type),
		}

		if enumTag := field.Tag.Get("enum"); enumTag != "" {
			fieldDoc.ValidValues = strings.Split(enumTag, ",")
		}

		section.Fields = append(section.Fields, fieldDoc)
	}

	return section
}

// getFieldType returns a string representation of the field type
func getFieldType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Bool:
		return "bool"
	case reflect.Ptr:
		return getFieldType(t.Elem())
	case reflect.Slice:
		return "[]" + getFieldType(t.Elem())
	default:
		return t.String()
	}
}

// getDefaultValue returns the default in TOML syntax, empty when unset
func getDefaultValue(v reflect.Value, t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		if v.String() == "" {
			return ""
		}
		return strconv.Quote(v.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Int() == 0 {
			return ""
		}
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Slice:
		if v.Len() == 0 {
			return ""
		}
		items := make([]string, v.Len())
		for i := range items {
			items[i] = getDefaultValue(v.Index(i), t.Elem())
		}
		return "[" + strings.Join(items, ", ") + "]"
	default:
		return ""
	}
}

func generateExampleTOML(docs []SectionDoc) string {
	var sb strings.Builder

	sb.WriteString(`# =============================================================================
# studydash Configuration Reference
# =============================================================================
# Every available option with its default. Copy what you need into
# studydash.toml; anything left out keeps its default.
#
# Quick Start:
#   [server]
#   backend = "http://localhost:5000"
# =============================================================================

`)

	for _, section := range docs {
		sb.WriteString("# -----------------------------------------------------------------------------\n")
		fmt.Fprintf(&sb, "# [%s] - %s\n", section.Name, section.Description)
		sb.WriteString("# -----------------------------------------------------------------------------\n\n")
		sb.WriteString(section.Example + "\n")

		for _, field := range section.Fields {
			fmt.Fprintf(&sb, "# %s\n", field.Description)
			if field.Required {
				sb.WriteString("# Required: yes\n")
			}
			if len(field.ValidValues) > 0 {
				fmt.Fprintf(&sb, "# Valid values: %s\n", strings.Join(field.ValidValues, ", "))
			}
			if field.Default == "" {
				fmt.Fprintf(&sb, "# %s = \n", field.Name)
			} else {
				fmt.Fprintf(&sb, "%s = %s\n", field.Name, field.Default)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func fieldSchema(field FieldDoc) map[string]any {
	schema := map[string]any{"description": field.Description}

	switch field.Type {
	case "string":
		schema["type"] = "string"
	case "int":
		schema["type"] = "integer"
	case "bool":
		schema["type"] = "boolean"
	case "[]string":
		schema["type"] = "array"
		schema["items"] = map[string]any{"type": "string"}
	}

	if field.Default != "" {
		var def any
		if err := json.Unmarshal([]byte(field.Default), &def); err == nil {
			schema["default"] = def
		}
	}

	if len(field.ValidValues) > 0 {
		if field.Type == "int" {
			values := make([]int, 0, len(field.ValidValues))
			for _, s := range field.ValidValues {
				if n, err := strconv.Atoi(s); err == nil {
					values = append(values, n)
				}
			}
			schema["enum"] = values
		} else {
			schema["enum"] = field.ValidValues
		}
	}

	return schema
}

func sectionSchema(section SectionDoc) map[string]any {
	props := map[string]any{}
	var required []string
	for _, field := range section.Fields {
		props[field.Name] = fieldSchema(field)
		if field.Required {
			required = append(required, field.Name)
		}
	}

	schema := map[string]any{
		"type":                 "object",
		"description":          section.Description,
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func generateJSONSchema(docs []SectionDoc) string {
	properties := map[string]any{}

	for _, section := range docs {
		name, pattern, keyed := strings.Cut(section.Name, ".")
		if !keyed {
			properties[name] = sectionSchema(section)
			continue
		}

		keyPattern := "^[a-zA-Z0-9_-]+$"
		if pattern == "<id>" {
			keyPattern = "^[0-9]+$"
		}
		properties[name] = map[string]any{
			"type":        "object",
			"description": section.Description,
			"patternProperties": map[string]any{
				keyPattern: sectionSchema(section),
			},
			"additionalProperties": false,
		}
	}

	schema := map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"title":                "studydash Configuration",
		"description":          "Configuration schema for the studydash admin dashboard",
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		// Only plain maps, slices and strings go in.
		panic(err)
	}
	return string(data) + "\n"
}

func generateMarkdownDocs(docs []SectionDoc) string {
	var sb strings.Builder

	sb.WriteString("# Configuration\n\n")
	sb.WriteString("studydash reads `" + config.DefaultPath + "` from the working directory, or the file given with `--config`. ")
	sb.WriteString("A missing default file means every option keeps its default. ")
	sb.WriteString("`studydash serve` reloads the file when it changes; the listen address only changes on restart.\n\n")
	sb.WriteString("Run `studydash validate [files...]` to check a file before deploying it.\n\n")

	for _, section := range docs {
		sb.WriteString("### `[" + section.Name + "]`\n\n")
		sb.WriteString(section.Description + "\n\n")

		sb.WriteString("| Field | Type | Required | Default | Description |\n")
		sb.WriteString("|-------|------|----------|---------|-------------|\n")

		for _, field := range section.Fields {
			required := "No"
			if field.Required {
				required = "**Yes**"
			}
			defaultVal := field.Default
			if defaultVal == "" {
				defaultVal = "-"
			}
			desc := field.Description
			if len(field.ValidValues) > 0 {
				desc += fmt.Sprintf(" (valid: `%s`)", strings.Join(field.ValidValues, "`, `"))
			}
			fmt.Fprintf(&sb, "| `%s` | %s | %s | `%s` | %s |\n",
				field.Name, field.Type, required, defaultVal, desc)
		}

		sb.WriteString("\n")
	}

	return sb.String()
}
