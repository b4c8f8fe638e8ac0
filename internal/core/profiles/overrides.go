package profiles

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/JonMunkholm/leadsync/internal/config"
	"github.com/JonMunkholm/leadsync/internal/core"
)

// Override adjusts a registered profile for one deployment.
//
// Example mapping.json5:
//
//	{
//	  profiles: {
//	    priority_leads: {
//	      table: "priority_leads_staging",
//	      sources: {owner_name: ["Owner 1"]},
//	      defaults: {contact_status: "queued"},
//	    },
//	  },
//	}
type Override struct {
	// Table replaces the profile's remote table.
	Table string `json:"table"`

	// Sources are extra source columns per field, tried before the built-in ones.
	Sources map[string][]string `json:"sources"`

	// Defaults replace per-field defaults.
	Defaults map[string]any `json:"defaults"`

	// Protected fields are added to the profile's protected list.
	Protected []string `json:"protected"`

	// InsertDefaults are merged into the profile's insert defaults.
	InsertDefaults map[string]any `json:"insert_defaults"`
}

// File is the mapping file layout.
type File struct {
	Profiles map[string]Override `json:"profiles"`
}

// LoadFile reads a mapping file and its .local override.
// A missing file yields an empty File.
func LoadFile(path string) (File, error) {
	f, err := config.ReadFile[File](path)
	if errors.Is(err, fs.ErrNotExist) {
		return File{}, nil
	}
	if err != nil {
		return File{}, err
	}
	return f, nil
}

// Resolve returns the named profile with any overrides from mappingFile
// applied. A non-empty table replaces the profile's table last. The
// registered profile is never modified.
func Resolve(name, mappingFile, table string) (*core.Mapping, error) {
	base, ok := core.Get(name)
	if !ok {
		return nil, &core.ConfigError{
			Field:       "LEADS_PROFILE",
			Problem:     fmt.Sprintf("unknown profile %q", name),
			Remediation: "use one of: " + strings.Join(core.Names(), ", "),
		}
	}

	m := clone(base)

	if mappingFile != "" {
		f, err := LoadFile(mappingFile)
		if err != nil {
			return nil, &core.ConfigError{
				Field:       "LEADS_MAPPING_FILE",
				Problem:     err.Error(),
				Remediation: "fix the JSON5 syntax in " + mappingFile,
				Err:         err,
			}
		}
		if o, ok := f.Profiles[name]; ok {
			if err := Apply(m, o); err != nil {
				return nil, &core.ConfigError{
					Field:       "LEADS_MAPPING_FILE",
					Problem:     err.Error(),
					Remediation: "override only fields the profile declares",
					Err:         err,
				}
			}
		}
	}

	if table != "" {
		m.Table = table
	}
	return m, nil
}

// Apply mutates m with o. Every field o names must exist in m.
func Apply(m *core.Mapping, o Override) error {
	if o.Table != "" {
		m.Table = o.Table
	}

	index := make(map[string]int, len(m.Fields))
	for i, f := range m.Fields {
		index[f.Name] = i
	}
	lookup := func(kind, name string) (int, error) {
		i, ok := index[name]
		if !ok {
			return 0, fmt.Errorf("profile %s: %s override for unknown field %q", m.Name, kind, name)
		}
		return i, nil
	}

	for name, extra := range o.Sources {
		i, err := lookup("sources", name)
		if err != nil {
			return err
		}
		m.Fields[i].Sources = append(append([]string{}, extra...), m.Fields[i].Sources...)
	}

	for name, v := range o.Defaults {
		i, err := lookup("defaults", name)
		if err != nil {
			return err
		}
		m.Fields[i].Default = v
	}

	for _, name := range o.Protected {
		if name == m.Key {
			return fmt.Errorf("profile %s: key %q cannot be protected", m.Name, name)
		}
		if !m.IsProtected(name) {
			m.Protected = append(m.Protected, name)
		}
	}

	for name, v := range o.InsertDefaults {
		i, err := lookup("insert_defaults", name)
		if err != nil {
			return err
		}
		m.InsertDefaults[name] = core.Coerce(v, m.Fields[i].Type)
	}

	return nil
}

func clone(m *core.Mapping) *core.Mapping {
	out := *m

	out.Fields = make([]core.FieldSpec, len(m.Fields))
	for i, f := range m.Fields {
		f.Sources = append([]string(nil), f.Sources...)
		out.Fields[i] = f
	}
	out.Protected = append([]string(nil), m.Protected...)
	out.InsertDefaults = m.InsertDefaults.Clone()

	return &out
}
