package script

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/aretw0/cadbridge/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Document is a declarative modelling script. JSON documents are accepted
// as well since JSON is a subset of YAML.
type Document struct {
	Name        string             `yaml:"name" json:"name"`
	Description string             `yaml:"description,omitempty" json:"description,omitempty"`
	Params      map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
	Steps       []Step             `yaml:"steps" json:"steps"`
}

// Step is either a single operation or a block of nested steps. Either form
// may carry a Repeat clause.
type Step struct {
	Op     string         `yaml:"op,omitempty" json:"op,omitempty"`
	Args   map[string]any `yaml:"args,omitempty" json:"args,omitempty"`
	Repeat *Repeat        `yaml:"repeat,omitempty" json:"repeat,omitempty"`
	Steps  []Step         `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// Repeat binds Var to every value from From to To inclusive, advancing by
// Step (1 when omitted). Bounds may be numbers or expressions.
type Repeat struct {
	Var  string `yaml:"var" json:"var"`
	From any    `yaml:"from" json:"from"`
	To   any    `yaml:"to" json:"to"`
	Step any    `yaml:"step,omitempty" json:"step,omitempty"`
}

// Parse decodes and validates a script.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: script: %v", domain.ErrInvalidParameter, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Name == "" {
		doc.Name = path
	}
	return doc, nil
}

// Validate checks the step structure without touching the host.
func (d *Document) Validate() error {
	if len(d.Steps) == 0 {
		return domain.Invalid("script %q has no steps", d.Name)
	}
	for name := range d.Params {
		if !identifier.MatchString(name) {
			return domain.Invalid("param name %q", name)
		}
	}
	return validateSteps(d.Steps, "")
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validateSteps(steps []Step, prefix string) error {
	for i, s := range steps {
		at := prefix + strconv.Itoa(i+1)
		switch {
		case s.Op != "" && len(s.Steps) > 0:
			return domain.Invalid("step %s: op and steps are mutually exclusive", at)
		case s.Op == "" && len(s.Steps) == 0:
			return domain.Invalid("step %s: needs an op or nested steps", at)
		}
		if r := s.Repeat; r != nil {
			if !identifier.MatchString(r.Var) {
				return domain.Invalid("step %s: repeat var %q", at, r.Var)
			}
			if r.From == nil || r.To == nil {
				return domain.Invalid("step %s: repeat needs from and to", at)
			}
		}
		if err := validateSteps(s.Steps, at+"."); err != nil {
			return err
		}
	}
	return nil
}
