package config

import (
	"github.com/pelletier/go-toml/v2"
)

// TOMLParser implements koanf.Parser on top of go-toml, the same library the
// settings file store writes with.
type TOMLParser struct{}

// TOML returns a koanf parser for TOML documents.
func TOML() *TOMLParser {
	return &TOMLParser{}
}

// Unmarshal parses a TOML document into a nested map.
func (p *TOMLParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if err := toml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Marshal renders a nested map as TOML.
func (p *TOMLParser) Marshal(m map[string]interface{}) ([]byte, error) {
	return toml.Marshal(m)
}
