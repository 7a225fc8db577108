package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tags maps beacon addresses to friendly names.
type Tags struct {
	AllowUnknown bool              `yaml:"allow_unknown"`
	Names        map[string]string `yaml:"tags"`
}

func NewTags() *Tags {
	return &Tags{
		AllowUnknown: true,
		Names:        make(map[string]string),
	}
}

// LoadTags reads a tag registry. An empty path yields a registry that
// accepts every address.
func LoadTags(path string) (*Tags, error) {
	if path == "" {
		return NewTags(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}

	return ParseTags(data)
}

func ParseTags(data []byte) (*Tags, error) {
	tags := NewTags()

	if err := yaml.Unmarshal(data, tags); err != nil {
		return nil, fmt.Errorf("parse tags: %w", err)
	}

	names := make(map[string]string, len(tags.Names))
	for addr, name := range tags.Names {
		names[normalizeAddress(addr)] = name
	}

	tags.Names = names

	return tags, nil
}

// Resolve returns the name for address and whether readings from it should
// be accepted.
func (t *Tags) Resolve(address string) (string, bool) {
	name, ok := t.Names[normalizeAddress(address)]
	if ok {
		return name, true
	}

	return "", t.AllowUnknown
}

func normalizeAddress(addr string) string {
	return strings.ToUpper(strings.TrimSpace(addr))
}
