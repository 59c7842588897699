package admin

import (
	"errors"
	"fmt"
	"sync"
)

// StrField is the pseudo-field that renders a record's String() value.
const StrField = "__str__"

var (
	// ErrAlreadyRegistered is returned when a model name is registered twice.
	ErrAlreadyRegistered = errors.New("admin: model already registered")

	// ErrNotRegistered is returned when looking up an unknown model.
	ErrNotRegistered = errors.New("admin: model not registered")
)

// Fieldset is one titled group of fields on an edit form. An empty Title
// renders as an untitled leading section.
type Fieldset struct {
	Title  string   `json:"title"`
	Fields []string `json:"fields"`
}

// ModelAdmin is the declarative presentation of one record type.
type ModelAdmin struct {
	Name        string     `json:"name"`
	Ordering    []string   `json:"ordering"`
	ListDisplay []string   `json:"list_display"`
	Fieldsets   []Fieldset `json:"fieldsets"`
}

// Validate checks the definition for an empty name and for a field that
// appears in more than one fieldset.
func (m ModelAdmin) Validate() error {
	if m.Name == "" {
		return errors.New("admin: model name is required")
	}
	if len(m.ListDisplay) == 0 {
		return fmt.Errorf("admin: %s: list display is empty", m.Name)
	}
	seen := make(map[string]string)
	for _, fs := range m.Fieldsets {
		for _, f := range fs.Fields {
			if prev, dup := seen[f]; dup {
				return fmt.Errorf("admin: %s: field %q appears in fieldsets %q and %q", m.Name, f, prev, fs.Title)
			}
			seen[f] = fs.Title
		}
	}
	return nil
}

// Field is a single named value inside a Section.
type Field struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Section is a rendered Fieldset.
type Section struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Row projects values onto the list display columns. Missing fields come
// back as nil so every row has the same shape.
func (m ModelAdmin) Row(values map[string]any) map[string]any {
	row := make(map[string]any, len(m.ListDisplay))
	for _, col := range m.ListDisplay {
		row[col] = values[col]
	}
	return row
}

// Sections groups values into the configured fieldsets, in order.
func (m ModelAdmin) Sections(values map[string]any) []Section {
	out := make([]Section, 0, len(m.Fieldsets))
	for _, fs := range m.Fieldsets {
		sec := Section{Title: fs.Title, Fields: make([]Field, 0, len(fs.Fields))}
		for _, f := range fs.Fields {
			sec.Fields = append(sec.Fields, Field{Name: f, Value: values[f]})
		}
		out = append(out, sec)
	}
	return out
}

// Site is a registry of model admins keyed by name. Safe for concurrent use.
type Site struct {
	mu     sync.RWMutex
	models map[string]ModelAdmin
	order  []string
}

// NewSite returns an empty registry.
func NewSite() *Site {
	return &Site{models: make(map[string]ModelAdmin)}
}

// Register adds m to the site.
func (s *Site) Register(m ModelAdmin) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.models[m.Name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, m.Name)
	}
	s.models[m.Name] = m
	s.order = append(s.order, m.Name)
	return nil
}

// Get returns the admin registered under name.
func (s *Site) Get(name string) (ModelAdmin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.models[name]
	if !ok {
		return ModelAdmin{}, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	return m, nil
}

// Models returns every registered admin in registration order.
func (s *Site) Models() []ModelAdmin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ModelAdmin, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.models[name])
	}
	return out
}

// NewDefaultSite returns a site with the account and sample admins
// registered.
func NewDefaultSite() (*Site, error) {
	site := NewSite()
	for _, m := range []ModelAdmin{AccountAdmin, SampleAdmin} {
		if err := site.Register(m); err != nil {
			return nil, err
		}
	}
	return site, nil
}
