package provider

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/resizer"
)

// Formats is the parsed format configuration.
type Formats struct {
	// DefaultExtension is used for thumbnails of media without a usable
	// extension of their own.
	DefaultExtension string

	// Registry holds "<context>_<name>" formats in file order, followed by
	// the admin format.
	Registry *domain.Registry
}

type formatEntry struct {
	Width          int               `yaml:"width"`
	Height         int               `yaml:"height"`
	Quality        int               `yaml:"quality"`
	Format         string            `yaml:"format"`
	Mode           string            `yaml:"mode"`
	Resizer        string            `yaml:"resizer"`
	ResizerOptions map[string]string `yaml:"resizer_options"`
	Constraint     *bool             `yaml:"constraint"`
}

func (e formatEntry) options() domain.FormatOptions {
	return domain.FormatOptions{
		Width:          e.Width,
		Height:         e.Height,
		Quality:        e.Quality,
		Format:         e.Format,
		Mode:           e.Mode,
		Resizer:        e.Resizer,
		ResizerOptions: e.ResizerOptions,
		Constraint:     e.Constraint,
	}
}

type contextEntry struct {
	// Formats is kept as a node so file order survives decoding.
	Formats yaml.Node `yaml:"formats"`
}

type formatsFile struct {
	DefaultFormat string       `yaml:"default_format"`
	Admin         *formatEntry `yaml:"admin"`
	Contexts      yaml.Node    `yaml:"contexts"`
}

// defaultAdminFormat is registered when the file does not override it.
var defaultAdminFormat = formatEntry{Width: 200, Quality: 90}

// LoadFormats reads and parses the format configuration file.
func LoadFormats(path string, resizers *resizer.Registry) (*Formats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read formats file: %w", err)
	}
	return ParseFormats(data, resizers)
}

// ParseFormats parses a YAML format configuration. Resizer ids are checked
// against resizers when it is non-nil.
func ParseFormats(data []byte, resizers *resizer.Registry) (*Formats, error) {
	var file formatsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse formats: %w", err)
	}

	out := &Formats{
		DefaultExtension: file.DefaultFormat,
		Registry:         domain.NewRegistry(),
	}

	add := func(name string, entry formatEntry) error {
		if entry.Resizer != "" && resizers != nil && !resizers.Has(entry.Resizer) {
			return domain.ResizerNotFound("provider.parse_formats", entry.Resizer)
		}
		f, err := domain.NewFormat(name, entry.options())
		if err != nil {
			return fmt.Errorf("format %s: %w", name, err)
		}
		out.Registry.Add(f)
		return nil
	}

	err := eachPair(&file.Contexts, func(context string, node *yaml.Node) error {
		var ctx contextEntry
		if err := node.Decode(&ctx); err != nil {
			return fmt.Errorf("context %s: %w", context, err)
		}
		return eachPair(&ctx.Formats, func(name string, node *yaml.Node) error {
			var entry formatEntry
			if err := node.Decode(&entry); err != nil {
				return fmt.Errorf("format %s_%s: %w", context, name, err)
			}
			return add(context+"_"+name, entry)
		})
	})
	if err != nil {
		return nil, err
	}

	admin := defaultAdminFormat
	if file.Admin != nil {
		admin = *file.Admin
	}
	if err := add(domain.FormatAdmin, admin); err != nil {
		return nil, err
	}

	return out, nil
}

// DefaultFormats returns the configuration used when no file is given.
func DefaultFormats() *Formats {
	r := domain.NewRegistry()
	for _, f := range []struct {
		name  string
		entry formatEntry
	}{
		{"default_small", formatEntry{Width: 100, Quality: 70}},
		{"default_big", formatEntry{Width: 500, Quality: 70}},
		{domain.FormatAdmin, defaultAdminFormat},
	} {
		format, err := domain.NewFormat(f.name, f.entry.options())
		if err != nil {
			panic(err)
		}
		r.Add(format)
	}
	return &Formats{Registry: r}
}

// eachPair calls fn for every key of a mapping node, in document order.
// An empty node is treated as an empty mapping.
func eachPair(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}
