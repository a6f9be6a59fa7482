package notify

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"text/template"

	"github.com/kursadbilgin/registration-engine/internal/domain"
)

const (
	templateExt  = ".tmpl"
	subjectBlock = "subject"
	contentBlock = "content"
)

//go:embed templates/*.tmpl
var defaultTemplates embed.FS

// ErrUnknownTemplate is returned for a template name that was never loaded.
var ErrUnknownTemplate = fmt.Errorf("%w: unknown template", domain.ErrValidation)

// Payload is the data every registration template is rendered with.
type Payload struct {
	Site     string
	SiteURL  string
	Request  domain.RegistrationRequest
	Password string
}

// ElevationRequested reports whether the registrant asked for more than the
// default profile.
func (p Payload) ElevationRequested() bool {
	profile, err := domain.ParseProfileFromString(p.Request.Profile)
	return err == nil && profile != domain.ProfileRegisteredUser
}

// Rendered is a rendered notification.
type Rendered struct {
	Subject string
	Body    string
}

// Renderer turns a named template and a payload into a subject and body.
// A template named "<name>.<lang>" is the language variant of <name>; a
// missing variant falls back to the base template.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer loads the built-in templates and then, when dir is non-empty,
// every *.tmpl file in dir. Files in dir replace built-ins with the same name.
func NewRenderer(dir string) (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template)}

	if err := r.load(defaultTemplates, "templates"); err != nil {
		return nil, fmt.Errorf("load default templates: %w", err)
	}
	if dir != "" {
		if err := r.load(os.DirFS(dir), "."); err != nil {
			return nil, fmt.Errorf("load templates from %s: %w", dir, err)
		}
	}
	return r, nil
}

func (r *Renderer) load(fsys fs.FS, root string) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != templateExt {
			continue
		}

		raw, err := fs.ReadFile(fsys, path.Join(root, entry.Name()))
		if err != nil {
			return err
		}

		name := strings.TrimSuffix(entry.Name(), templateExt)
		tmpl, err := template.New(name).Option("missingkey=error").Parse(string(raw))
		if err != nil {
			return fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		for _, block := range []string{subjectBlock, contentBlock} {
			if tmpl.Lookup(block) == nil {
				return fmt.Errorf("template %s does not define %q", name, block)
			}
		}

		r.templates[name] = tmpl
	}
	return nil
}

// Has reports whether a base template called name is loaded.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Names lists the loaded template names, language variants included.
func (r *Renderer) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Renderer) Render(name, lang string, payload Payload) (Rendered, error) {
	tmpl, err := r.lookup(name, lang)
	if err != nil {
		return Rendered{}, err
	}

	subject, err := execute(tmpl, subjectBlock, payload)
	if err != nil {
		return Rendered{}, err
	}
	body, err := execute(tmpl, contentBlock, payload)
	if err != nil {
		return Rendered{}, err
	}

	return Rendered{
		Subject: strings.Join(strings.Fields(subject), " "),
		Body:    strings.TrimLeft(body, "\r\n"),
	}, nil
}

func (r *Renderer) lookup(name, lang string) (*template.Template, error) {
	if lang != "" {
		if tmpl, ok := r.templates[name+"."+lang]; ok {
			return tmpl, nil
		}
	}
	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownTemplate, name)
}

func execute(tmpl *template.Template, block string, payload Payload) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, block, payload); err != nil {
		return "", fmt.Errorf("render %s/%s: %w", tmpl.Name(), block, err)
	}
	return buf.String(), nil
}
