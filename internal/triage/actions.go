package triage

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/provdir/internal/model"
)

//go:embed actions.yaml
var defaultActionsYAML []byte

// actionsFile is the on-disk shape of a remediation template set.
type actionsFile struct {
	Default    string            `yaml:"default"`
	Fallback   string            `yaml:"fallback"`
	Precedence []string          `yaml:"precedence"`
	Actions    map[string]string `yaml:"actions"`
}

// Actions resolves a finding set to a recommended remediation string.
type Actions struct {
	defaultAction string
	fallback      string
	templates     map[model.IssueCode]string
	precedence    map[model.IssueCode]int
}

// DefaultActions returns the embedded remediation templates.
func DefaultActions() *Actions {
	a, err := fromFile(defaultActionsYAML)
	if err != nil {
		panic("triage: embedded actions.yaml is malformed: " + err.Error())
	}
	return a
}

// LoadActions reads remediation templates from a YAML file. Fields left
// empty in the file keep the embedded defaults, and per-issue templates
// merge over them.
func LoadActions(path string) (*Actions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "triage: read actions %s", path)
	}

	var override actionsFile
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrapf(err, "triage: parse actions %s", path)
	}

	a := DefaultActions()
	if override.Default != "" {
		a.defaultAction = override.Default
	}
	if override.Fallback != "" {
		a.fallback = override.Fallback
	}
	if len(override.Precedence) > 0 {
		a.precedence = precedenceIndex(override.Precedence)
	}
	for code, text := range override.Actions {
		a.templates[model.IssueCode(code)] = text
	}
	return a, nil
}

func fromFile(data []byte) (*Actions, error) {
	var f actionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	a := &Actions{
		defaultAction: f.Default,
		fallback:      f.Fallback,
		templates:     make(map[model.IssueCode]string, len(f.Actions)),
		precedence:    precedenceIndex(f.Precedence),
	}
	for code, text := range f.Actions {
		a.templates[model.IssueCode(code)] = text
	}
	return a, nil
}

func precedenceIndex(codes []string) map[model.IssueCode]int {
	idx := make(map[model.IssueCode]int, len(codes))
	for i, c := range codes {
		idx[model.IssueCode(c)] = i
	}
	return idx
}

// For returns the remediation text for the worst finding in the set, or the
// default when the set is empty.
func (a *Actions) For(findings []model.Finding) string {
	if len(findings) == 0 {
		return a.defaultAction
	}
	worst := findings[0]
	for _, f := range findings[1:] {
		if a.outranks(f, worst) {
			worst = f
		}
	}
	if text, ok := a.templates[worst.IssueCode]; ok {
		return text
	}
	return a.fallback
}

// outranks reports whether finding x is worse than y: higher severity wins,
// ties break on precedence order.
func (a *Actions) outranks(x, y model.Finding) bool {
	sx, sy := severityRank(x.Severity), severityRank(y.Severity)
	if sx != sy {
		return sx > sy
	}
	return a.rank(x.IssueCode) < a.rank(y.IssueCode)
}

// rank returns the precedence index for a code. Unknown codes sort last.
func (a *Actions) rank(code model.IssueCode) int {
	if i, ok := a.precedence[code]; ok {
		return i
	}
	return len(a.precedence)
}

func severityRank(s model.Severity) int {
	switch s {
	case model.SeverityCritical:
		return 2
	case model.SeverityWarning:
		return 1
	default:
		return 0
	}
}
