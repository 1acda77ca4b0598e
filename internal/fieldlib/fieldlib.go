// Package fieldlib holds the catalog of canonical extraction fields: per-field
// regex patterns, table-header synonyms, value types and required flags. The
// catalog is immutable after construction and injected into extractors.
package fieldlib

import (
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/fundsight/pedocs/internal/model"
)

// FieldDef is one canonical field definition.
type FieldDef struct {
	Canonical    string          `yaml:"canonical"`
	Type         model.FieldType `yaml:"type"`
	Patterns     []string        `yaml:"patterns"`
	TableHeaders []string        `yaml:"table_headers"`
	Required     bool            `yaml:"required"`
	// Components names the fields summed into this one (e.g. total
	// distributions from ROC + gains + income + tax). Empty for plain fields.
	Components []string `yaml:"components,omitempty"`

	compiled []*regexp.Regexp
}

// CompiledPatterns returns the field's pre-compiled regexes in priority order.
func (f *FieldDef) CompiledPatterns() []*regexp.Regexp { return f.compiled }

// Library is an indexed, read-only collection of field definitions per
// document type.
type Library struct {
	byDocType map[model.DocType][]FieldDef
	byName    map[model.DocType]map[string]*FieldDef
}

// New builds a Library from per-doc-type definitions, pre-compiling every
// regex pattern case-insensitively. An invalid pattern fails construction.
func New(defs map[model.DocType][]FieldDef) (*Library, error) {
	lib := &Library{
		byDocType: make(map[model.DocType][]FieldDef, len(defs)),
		byName:    make(map[model.DocType]map[string]*FieldDef, len(defs)),
	}
	for dt, fields := range defs {
		out := make([]FieldDef, len(fields))
		copy(out, fields)
		idx := make(map[string]*FieldDef, len(fields))
		for i := range out {
			f := &out[i]
			f.compiled = make([]*regexp.Regexp, 0, len(f.Patterns))
			for _, p := range f.Patterns {
				re, err := regexp.Compile("(?i)" + p)
				if err != nil {
					return nil, eris.Wrapf(err, "fieldlib: compile pattern for %s.%s", dt, f.Canonical)
				}
				f.compiled = append(f.compiled, re)
			}
			idx[f.Canonical] = f
		}
		lib.byDocType[dt] = out
		lib.byName[dt] = idx
	}
	return lib, nil
}

// Default returns the built-in catalog.
func Default() (*Library, error) {
	return New(builtinCatalog())
}

// LoadFile builds a Library from the built-in catalog merged with YAML
// overrides. Overridden fields replace built-ins by canonical name; new
// fields are appended.
func LoadFile(path string) (*Library, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fieldlib: read %s", path)
	}
	var overrides map[model.DocType][]FieldDef
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, eris.Wrapf(err, "fieldlib: parse %s", path)
	}

	merged := builtinCatalog()
	for dt, fields := range overrides {
		base := merged[dt]
		byName := make(map[string]int, len(base))
		for i, f := range base {
			byName[f.Canonical] = i
		}
		for _, f := range fields {
			if i, ok := byName[f.Canonical]; ok {
				base[i] = f
			} else {
				base = append(base, f)
			}
		}
		merged[dt] = base
	}
	return New(merged)
}

// ForDocType returns the field definitions for a document type. The returned
// slice must not be mutated.
func (l *Library) ForDocType(dt model.DocType) []FieldDef {
	return l.byDocType[dt]
}

// Field returns the definition of one canonical field for a document type.
func (l *Library) Field(dt model.DocType, canonical string) (*FieldDef, bool) {
	idx, ok := l.byName[dt]
	if !ok {
		return nil, false
	}
	f, ok := idx[canonical]
	return f, ok
}

// Required returns the required fields for a document type.
func (l *Library) Required(dt model.DocType) []FieldDef {
	var out []FieldDef
	for _, f := range l.byDocType[dt] {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}
