package vocabulary

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Extension is the on-disk format for site-specific vocabulary additions.
//
//	biomarkers:
//	  - key: glucose
//	    aliases: ["glucose plasma fasting"]
//	  - key: vitamin_k
//	    name: Vitamin K1
//	    category: vitamin
//	    aliases: ["phylloquinone"]
//	variants:
//	  - key: mthfr_c677t
//	    aliases: ["mthfr thermolabile"]
type Extension struct {
	Biomarkers []BiomarkerEntry `yaml:"biomarkers"`
	Variants   []VariantEntry   `yaml:"variants"`
}

// LoadFile builds a vocabulary from the built-in tables merged with the extension at path.
// Entries with a known key add aliases and notations and override non-empty fields; entries
// with a new key are appended.
func LoadFile(path string, opts ...Option) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary file: %w", err)
	}
	return LoadExtension(data, opts...)
}

// LoadExtension is LoadFile for an in-memory document.
func LoadExtension(data []byte, opts ...Option) (*Vocabulary, error) {
	var ext Extension
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ext); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing vocabulary file: %w", err)
	}

	biomarkers := mergeBiomarkers(biomarkerTable, ext.Biomarkers)
	variants := mergeVariants(variantTable, ext.Variants)

	v, err := New(biomarkers, variants, opts...)
	if err != nil {
		return nil, fmt.Errorf("building vocabulary: %w", err)
	}
	return v, nil
}

func mergeBiomarkers(base, extra []BiomarkerEntry) []BiomarkerEntry {
	out := make([]BiomarkerEntry, len(base))
	index := make(map[string]int, len(base))
	for i, e := range base {
		e.Aliases = append([]string(nil), e.Aliases...)
		out[i] = e
		index[e.Key] = i
	}
	for _, e := range extra {
		i, ok := index[e.Key]
		if !ok {
			index[e.Key] = len(out)
			out = append(out, e)
			continue
		}
		cur := &out[i]
		if e.Name != "" {
			cur.Name = e.Name
		}
		if e.Category != "" {
			cur.Category = e.Category
		}
		if e.Unit != "" {
			cur.Unit = e.Unit
		}
		cur.Aliases = append(cur.Aliases, e.Aliases...)
	}
	return out
}

func mergeVariants(base, extra []VariantEntry) []VariantEntry {
	out := make([]VariantEntry, len(base))
	index := make(map[string]int, len(base))
	for i, e := range base {
		e.Aliases = append([]string(nil), e.Aliases...)
		e.Notations = append([]string(nil), e.Notations...)
		out[i] = e
		index[e.Key] = i
	}
	for _, e := range extra {
		i, ok := index[e.Key]
		if !ok {
			index[e.Key] = len(out)
			out = append(out, e)
			continue
		}
		cur := &out[i]
		if e.Identifier != "" {
			cur.Identifier = e.Identifier
		}
		if e.Gene != "" {
			cur.Gene = e.Gene
		}
		if e.Name != "" {
			cur.Name = e.Name
		}
		if e.Ref != "" {
			cur.Ref = e.Ref
		}
		if e.Alt != "" {
			cur.Alt = e.Alt
		}
		cur.Notations = append(cur.Notations, e.Notations...)
		cur.Aliases = append(cur.Aliases, e.Aliases...)
	}
	return out
}
