package zones

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk zone table:
//
//	zones:
//	  EST: "-05:00"
//	  IST: "+05:30"
type File struct {
	Zones map[string]string `yaml:"zones"`
}

func LoadYAML(r io.Reader) (*Table, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("zones: decode yaml: %w", err)
	}
	offsets := make([]Offset, 0, len(f.Zones))
	for label, raw := range f.Zones {
		d, err := ParseOffset(raw)
		if err != nil {
			return nil, fmt.Errorf("zone %s: %w", label, err)
		}
		offsets = append(offsets, Offset{Label: label, Offset: d})
	}
	return NewTable(offsets...)
}

func LoadYAMLFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadYAML(f)
}
