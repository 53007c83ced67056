package ortho

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed rules/en.toml
var defaultRulesTOML []byte

// ruleFile is the on-disk layout shared by the TOML and YAML formats.
type ruleFile struct {
	Starts     []string `toml:"starts" yaml:"starts"`
	Vowels     []string `toml:"vowels" yaml:"vowels"`
	FirstEnds  []string `toml:"first-ends" yaml:"first-ends"`
	SecondEnds []string `toml:"second-ends" yaml:"second-ends"`
}

var loadDefault = sync.OnceValues(func() (Rules, error) {
	return DecodeRules(defaultRulesTOML, "toml")
})

// Default returns the built-in English rules.
func Default() (Rules, error) {
	return loadDefault()
}

// LoadRules reads rules from a .toml, .yaml or .yml file.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return Rules{}, fmt.Errorf("rules path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read rules: %w", err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	rules, err := DecodeRules(data, format)
	if err != nil {
		return Rules{}, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// DecodeRules parses rules in the given format ("toml", "yaml" or "yml").
func DecodeRules(data []byte, format string) (Rules, error) {
	var file ruleFile
	switch format {
	case "toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&file); err != nil {
			return Rules{}, fmt.Errorf("failed to decode rules: %w", err)
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil {
			return Rules{}, fmt.Errorf("failed to decode rules: %w", err)
		}
	default:
		return Rules{}, fmt.Errorf("unsupported rules format %q", format)
	}
	return NewRules(file.Starts, file.Vowels, file.FirstEnds, file.SecondEnds)
}

// EncodeTOML writes rules in the TOML layout accepted by LoadRules.
func EncodeTOML(w io.Writer, r Rules) error {
	file := ruleFile{
		Starts:     r.List(Starts),
		Vowels:     r.List(Vowels),
		FirstEnds:  r.List(FirstEnds),
		SecondEnds: r.List(SecondEnds),
	}
	if err := toml.NewEncoder(w).Encode(file); err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}
	return nil
}
