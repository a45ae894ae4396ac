package prompt

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/isaacphi/cmdstream/internal/command"
)

var ErrTemplateNotFound = errors.New("template not found")

// SystemTemplateName is the template that teaches a model the command protocol.
const SystemTemplateName = "system"

const systemTemplate = `You act only by emitting commands. Reply with a JSON array and nothing else.
Each element is an object with exactly one key, the command name, whose value is an object of arguments:

[{"say": {"text": "Hello"}}, {"say": {"text": "Goodbye"}}]

Available commands:
{{range .Commands}}- {{.Name}}: {{.Description}}{{if .Args}} Arguments: {{join .Args ", "}}.{{end}}
{{end}}
To pass long or multi-line text, put it between {{.RawStart}} and {{.RawEnd}} instead of a JSON string. Nothing between the markers needs escaping:

{"write": {"filename": "hello.py", "text": {{.RawStart}}
print("hello")
{{.RawEnd}}}}
`

// CommandHelp describes one command to the model.
type CommandHelp struct {
	Name        string
	Description string
	Args        []string
}

type Template struct {
	Name        string
	Description string
	Template    string
	Variables   []string
}

type Manager struct {
	templates map[string]*Template
}

func NewManager() *Manager {
	m := &Manager{
		templates: make(map[string]*Template),
	}
	m.AddTemplate(&Template{
		Name:        SystemTemplateName,
		Description: "Command protocol system message",
		Template:    systemTemplate,
		Variables:   []string{"Commands", "RawStart", "RawEnd"},
	})
	return m
}

// AddTemplate registers t, replacing any template with the same name.
func (m *Manager) AddTemplate(t *Template) {
	m.templates[t.Name] = t
}

func (m *Manager) LoadTemplate(name string) (*Template, error) {
	if t, ok := m.templates[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
}

// RenderTemplate executes the template with the given variables. Every
// variable the template declares must be present.
func (m *Manager) RenderTemplate(t *Template, variables map[string]any) (string, error) {
	for _, name := range t.Variables {
		if _, ok := variables[name]; !ok {
			return "", fmt.Errorf("template %s: missing variable %s", t.Name, name)
		}
	}

	tmpl, err := template.New(t.Name).
		Funcs(template.FuncMap{"join": strings.Join}).
		Option("missingkey=error").
		Parse(t.Template)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", t.Name, err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, variables); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", t.Name, err)
	}
	return b.String(), nil
}

// SystemMessage renders the command protocol for the given commands.
func (m *Manager) SystemMessage(commands []CommandHelp) (string, error) {
	t, err := m.LoadTemplate(SystemTemplateName)
	if err != nil {
		return "", err
	}
	return m.RenderTemplate(t, map[string]any{
		"Commands": commands,
		"RawStart": command.RawStart,
		"RawEnd":   command.RawEnd,
	})
}
