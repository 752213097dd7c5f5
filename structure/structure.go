// Package structure defines configurable proposal structure templates for
// different RFP types and validates generated proposals against them.
package structure

import "sort"

// Section defines one section of a proposal template.
type Section struct {
	Name        string `json:"name"`
	Required    bool   `json:"required"`
	MaxPages    int    `json:"max_pages,omitempty"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
}

// Template defines the complete structure of a proposal.
type Template struct {
	Name         string            `json:"template_name"`
	Sections     []Section         `json:"sections"`
	Formatting   map[string]string `json:"formatting,omitempty"`
	Instructions string            `json:"instructions,omitempty"`
}

// SectionNames returns section names sorted by their declared order.
func (t *Template) SectionNames() []string {
	sections := make([]Section, len(t.Sections))
	copy(sections, t.Sections)
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})

	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}
	return names
}

// RequiredSections returns only the required sections.
func (t *Template) RequiredSections() []Section {
	var required []Section
	for _, s := range t.Sections {
		if s.Required {
			required = append(required, s)
		}
	}
	return required
}

// Validate checks that a proposal contains every required section.
// Missing section names come back in template order.
func (t *Template) Validate(present []string) (bool, []string) {
	presentSet := make(map[string]struct{}, len(present))
	for _, name := range present {
		presentSet[name] = struct{}{}
	}

	var missing []string
	for _, s := range t.RequiredSections() {
		if _, ok := presentSet[s.Name]; !ok {
			missing = append(missing, s.Name)
		}
	}
	return len(missing) == 0, missing
}
