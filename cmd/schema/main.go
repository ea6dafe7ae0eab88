// Command schema emits JSON schemas for the designer-authored catalog files
// so editors and CI can validate config/races.yaml, config/rewards.yaml, and
// config/items.yaml before the server sees them.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"ringrace/server/internal/catalog"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write the JSON schemas")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	targets := []struct {
		name  string
		value any
		title string
	}{
		{"races.schema.json", new(catalog.RacesFile), "Race zone and agent catalog"},
		{"rewards.schema.json", new(catalog.RewardsFile), "Race reward tables"},
		{"items.schema.json", new(catalog.ItemsFile), "Item trade data and vendor tables"},
	}

	for _, target := range targets {
		schema := buildSchema(target.value, target.title)
		if err := writeSchema(filepath.Join(outDir, target.name), schema); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", target.name, err)
			os.Exit(1)
		}
	}
}

func buildSchema(value any, title string) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(value)
	schema.Title = title
	return schema
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
