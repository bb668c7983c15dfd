package report

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed signatures.yaml
var signaturesYAML []byte

// Signature is one recognizable failure pattern set in a winget log.
type Signature struct {
	Name     string   `yaml:"name"`
	Reason   string   `yaml:"reason"`
	Patterns []string `yaml:"patterns"`
}

type signatureFile struct {
	Signatures []Signature `yaml:"signatures"`
}

func loadSignatures() []Signature {
	var f signatureFile
	if err := yaml.Unmarshal(signaturesYAML, &f); err != nil {
		// The ruleset is compiled in; a parse failure is a packaging bug.
		log.Error("embedded signature ruleset did not parse", "error", err)
		return nil
	}
	return f.Signatures
}

// match returns true when any of the signature's patterns occurs in the log.
func (s Signature) match(logContent string) bool {
	lower := strings.ToLower(logContent)
	for _, p := range s.Patterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
