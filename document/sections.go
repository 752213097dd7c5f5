// Package document segments generated proposal markdown into named
// sections for compliance mapping.
package document

import "strings"

// SplitSections splits proposal markdown into a section-name -> text map,
// keyed by second-level (##) headings. Deeper headings stay inside their
// parent section. Text before the first heading is keyed "Introduction".
func SplitSections(markdown string) map[string]string {
	sections := make(map[string]string)
	current := "Introduction"
	var content []string

	flush := func() {
		if len(content) > 0 {
			sections[current] = strings.Join(content, "\n")
		}
	}

	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(line, "##") && !strings.HasPrefix(line, "###") {
			flush()
			current = strings.TrimSpace(strings.Trim(line, "#"))
			content = nil
			continue
		}
		content = append(content, line)
	}
	flush()

	return sections
}

// SectionNames lists the ## headings of proposal markdown in document
// order, used to validate generated structure against a template.
func SectionNames(markdown string) []string {
	var names []string
	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(line, "##") && !strings.HasPrefix(line, "###") {
			names = append(names, strings.TrimSpace(strings.Trim(line, "#")))
		}
	}
	return names
}
