package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

var variantSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	b, err := json.Marshal(BuildVariantJSONSchema())
	if err != nil {
		panic(fmt.Errorf("marshal variant schema: %w", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("variant.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Errorf("add variant schema: %w", err))
	}
	schema, err := compiler.Compile("variant.json")
	if err != nil {
		panic(fmt.Errorf("compile variant schema: %w", err))
	}
	return schema
}

// ParseVariant validates a YAML or JSON variant definition against the
// variant schema, decodes it and compiles its patterns.
func ParseVariant(data []byte) (*Variant, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode variant: %w", err)
	}
	// Round-trip through encoding/json so the validator sees JSON types.
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode variant: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode variant: %w", err)
	}
	if err := variantSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("variant does not match schema: %w", err)
	}

	var out Variant
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode variant: %w", err)
	}
	if err := out.Compile(); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadFile reads and parses one variant definition file.
func LoadFile(path string) (*Variant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, err := ParseVariant(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// LoadDir registers every *.yaml, *.yml and *.json variant in dir, in name
// order. A file that fails validation aborts the load.
func (r *Registry) LoadDir(dir string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read variants dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	for _, p := range paths {
		v, err := LoadFile(p)
		if err != nil {
			return 0, err
		}
		if err := r.Register(v); err != nil {
			return 0, err
		}
		logger.Debug("report.variant.loaded", "name", v.Name, "path", p)
	}
	return len(paths), nil
}
