// Package prompt holds the analysis action table: for each action, a fixed
// system prompt, a user template and the shape of the expected output.
package prompt

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/site-analyzer/internal/model"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Template is one analysis action.
type Template struct {
	Name   string
	System string
	Output model.OutputFormat

	user *template.Template
}

// Render fills the user template with the (already truncated) site text.
func (t Template) Render(content string) (string, error) {
	var buf bytes.Buffer
	if err := t.user.Execute(&buf, struct{ Content string }{content}); err != nil {
		return "", eris.Wrapf(err, "prompt: render %s", t.Name)
	}
	return buf.String(), nil
}

// Registry is the closed set of analysis actions, in declaration order.
type Registry struct {
	order []string
	byKey map[string]Template
}

type fileFormat struct {
	Prompts struct {
		Actions []struct {
			Name   string `yaml:"name"`
			Output string `yaml:"output"`
			System string `yaml:"system"`
			User   string `yaml:"user"`
		} `yaml:"actions"`
	} `yaml:"prompts"`
}

// Default returns the registry built from the embedded prompt table.
func Default() (*Registry, error) {
	return Parse(defaultPrompts)
}

// Parse builds a registry from YAML. Names must be unique and non-empty,
// output must be "markdown" or "json", and user templates must parse.
func Parse(data []byte) (*Registry, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "prompt: parse table")
	}
	if len(f.Prompts.Actions) == 0 {
		return nil, eris.New("prompt: table has no actions")
	}

	r := &Registry{byKey: make(map[string]Template, len(f.Prompts.Actions))}
	for i, a := range f.Prompts.Actions {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return nil, eris.Errorf("prompt: action %d has no name", i)
		}
		if _, dup := r.byKey[name]; dup {
			return nil, eris.Errorf("prompt: duplicate action %q", name)
		}

		var out model.OutputFormat
		switch strings.ToLower(strings.TrimSpace(a.Output)) {
		case "", string(model.OutputMarkdown):
			out = model.OutputMarkdown
		case string(model.OutputJSON):
			out = model.OutputJSON
		default:
			return nil, eris.Errorf("prompt: action %q has unknown output %q", name, a.Output)
		}

		user, err := template.New(name).Option("missingkey=error").Parse(a.User)
		if err != nil {
			return nil, eris.Wrapf(err, "prompt: action %q template", name)
		}

		r.order = append(r.order, name)
		r.byKey[name] = Template{
			Name:   name,
			System: strings.TrimSpace(a.System),
			Output: out,
			user:   user,
		}
	}
	return r, nil
}

// Get looks up an action by exact name.
func (r *Registry) Get(name string) (Template, bool) {
	t, ok := r.byKey[name]
	return t, ok
}

// Names lists the actions in table order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
