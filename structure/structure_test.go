package structure

import (
	"reflect"
	"testing"
)

func TestGetTemplate(t *testing.T) {
	tpl := GetTemplate("government_canada")
	if tpl == nil {
		t.Fatal("government_canada template missing")
	}
	if tpl.Name != "Government of Canada RFP" {
		t.Errorf("name = %q", tpl.Name)
	}
	if len(tpl.Sections) != 12 {
		t.Errorf("sections = %d, want 12", len(tpl.Sections))
	}

	if GetTemplate("nonexistent") != nil {
		t.Error("unknown template should return nil")
	}
}

func TestListTemplates(t *testing.T) {
	got := ListTemplates()
	want := []string{"consulting", "corporate", "government_canada", "international_development", "it_services"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListTemplates() = %v, want %v", got, want)
	}
}

func TestSectionNamesOrdered(t *testing.T) {
	tpl := &Template{
		Sections: []Section{
			{Name: "C", Order: 3},
			{Name: "A", Order: 1},
			{Name: "B", Order: 2},
		},
	}

	got := tpl.SectionNames()
	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SectionNames() = %v, want %v", got, want)
	}
}

func TestValidate(t *testing.T) {
	tpl := &Template{
		Sections: []Section{
			{Name: "Executive Summary", Required: true, Order: 1},
			{Name: "Pricing", Required: true, Order: 2},
			{Name: "Appendices", Required: false, Order: 3},
		},
	}

	ok, missing := tpl.Validate([]string{"Executive Summary", "Pricing"})
	if !ok || len(missing) != 0 {
		t.Errorf("complete proposal flagged: missing=%v", missing)
	}

	// Optional sections don't matter; required ones do
	ok, missing = tpl.Validate([]string{"Executive Summary", "Appendices"})
	if ok {
		t.Error("proposal missing Pricing reported valid")
	}
	if !reflect.DeepEqual(missing, []string{"Pricing"}) {
		t.Errorf("missing = %v, want [Pricing]", missing)
	}
}

func TestAllTemplatesHaveOrderedRequiredSections(t *testing.T) {
	for _, name := range ListTemplates() {
		tpl := GetTemplate(name)
		if len(tpl.RequiredSections()) == 0 {
			t.Errorf("template %s has no required sections", name)
		}
		seen := map[int]bool{}
		for _, s := range tpl.Sections {
			if seen[s.Order] {
				t.Errorf("template %s has duplicate order %d", name, s.Order)
			}
			seen[s.Order] = true
		}
	}
}
