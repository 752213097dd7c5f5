package structure

import "sort"

// templates holds the predefined proposal templates keyed by internal ID.
var templates = map[string]*Template{
	"government_canada": {
		Name: "Government of Canada RFP",
		Sections: []Section{
			{Name: "Cover Letter", Required: true, MaxPages: 1, Description: "Formal letter introducing the proposal", Order: 1},
			{Name: "Executive Summary", Required: true, MaxPages: 2, Description: "High-level overview of the proposal", Order: 2},
			{Name: "Understanding of Requirements", Required: true, Description: "Demonstrate comprehension of RFP requirements", Order: 3},
			{Name: "Technical Approach", Required: true, Description: "Detailed technical solution and methodology", Order: 4},
			{Name: "Team Experience and Qualifications", Required: true, Description: "Team members, roles, and relevant experience", Order: 5},
			{Name: "Project Management Approach", Required: true, Description: "How the project will be managed", Order: 6},
			{Name: "Budget and Pricing", Required: true, Description: "Detailed cost breakdown", Order: 7},
			{Name: "Schedule and Timeline", Required: true, Description: "Project timeline with milestones", Order: 8},
			{Name: "Risk Management", Required: true, Description: "Identified risks and mitigation strategies", Order: 9},
			{Name: "References", Required: true, Description: "Client references for similar projects", Order: 10},
			{Name: "Compliance Matrix", Required: true, Description: "Requirement-by-requirement compliance", Order: 11},
			{Name: "Appendices", Required: false, Description: "Supporting documents and certifications", Order: 12},
		},
		Formatting: map[string]string{
			"font":         "Arial",
			"font_size":    "11pt",
			"line_spacing": "1.15",
			"margins":      "1 inch all sides",
			"page_numbers": "Bottom center",
			"header":       "Company name and RFP number",
		},
		Instructions: `Follow Treasury Board of Canada guidelines for proposal format.
All pages must be numbered. Use clear headings and subheadings.
Include table of contents. Comply with page limits where specified.`,
	},

	"corporate": {
		Name: "Corporate RFP",
		Sections: []Section{
			{Name: "Executive Summary", Required: true, MaxPages: 2, Description: "Concise overview for executives", Order: 1},
			{Name: "Company Overview", Required: true, Description: "Company background and capabilities", Order: 2},
			{Name: "Proposed Solution", Required: true, Description: "Detailed solution addressing RFP requirements", Order: 3},
			{Name: "Implementation Plan", Required: true, Description: "Step-by-step implementation approach", Order: 4},
			{Name: "Team and Resources", Required: true, Description: "Team structure and resource allocation", Order: 5},
			{Name: "Pricing", Required: true, Description: "Cost structure and pricing model", Order: 6},
			{Name: "Timeline", Required: true, Description: "Project schedule and key milestones", Order: 7},
			{Name: "Case Studies", Required: false, Description: "Relevant success stories", Order: 8},
			{Name: "Terms and Conditions", Required: true, Description: "Legal terms and contract structure", Order: 9},
			{Name: "Compliance Matrix", Required: true, Description: "Requirement compliance checklist", Order: 10},
		},
		Formatting: map[string]string{
			"font":         "Calibri or Arial",
			"font_size":    "11pt",
			"line_spacing": "Single",
			"margins":      "1 inch",
			"branding":     "Include company logo and colors",
		},
		Instructions: `Professional business format. Use compelling language.
Highlight differentiators and competitive advantages.
Include relevant graphics and charts.`,
	},

	"consulting": {
		Name: "Consulting Services RFP",
		Sections: []Section{
			{Name: "Executive Summary", Required: true, MaxPages: 1, Description: "Strategic overview and key recommendations", Order: 1},
			{Name: "Situation Analysis", Required: true, Description: "Current state assessment and challenges", Order: 2},
			{Name: "Approach and Methodology", Required: true, Description: "Consulting methodology and frameworks", Order: 3},
			{Name: "Scope of Work", Required: true, Description: "Detailed deliverables and activities", Order: 4},
			{Name: "Team Composition", Required: true, Description: "Consultant bios and expertise", Order: 5},
			{Name: "Work Plan and Timeline", Required: true, Description: "Phased approach with milestones", Order: 6},
			{Name: "Investment", Required: true, Description: "Fee structure and payment terms", Order: 7},
			{Name: "Expected Outcomes", Required: true, Description: "Success metrics and value proposition", Order: 8},
			{Name: "Relevant Experience", Required: true, Description: "Case studies and client testimonials", Order: 9},
			{Name: "Assumptions and Exclusions", Required: true, Description: "Scope boundaries and dependencies", Order: 10},
		},
		Formatting: map[string]string{
			"font":         "Times New Roman or Garamond",
			"font_size":    "11-12pt",
			"line_spacing": "1.5",
			"style":        "Professional consulting firm style",
			"emphasis":     "Data-driven insights and frameworks",
		},
		Instructions: `Use consulting best practices. Include frameworks, matrices,
and strategic insights. Emphasize thought leadership and expertise.
Quantify impact and ROI where possible.`,
	},

	"international_development": {
		Name: "International Development RFP",
		Sections: []Section{
			{Name: "Executive Summary", Required: true, MaxPages: 3, Description: "Proposal overview in English and French", Order: 1},
			{Name: "Context Analysis", Required: true, Description: "Country/regional context and needs assessment", Order: 2},
			{Name: "Technical Approach", Required: true, Description: "Development methodology and interventions", Order: 3},
			{Name: "Logical Framework", Required: true, Description: "Logframe with outputs, outcomes, indicators", Order: 4},
			{Name: "Stakeholder Engagement", Required: true, Description: "Consultation and participation strategy", Order: 5},
			{Name: "Sustainability Plan", Required: true, Description: "Long-term sustainability and exit strategy", Order: 6},
			{Name: "Monitoring and Evaluation", Required: true, Description: "M&E framework and data collection", Order: 7},
			{Name: "Team Expertise", Required: true, Description: "International and local team members", Order: 8},
			{Name: "Budget", Required: true, Description: "Detailed budget with unit costs", Order: 9},
			{Name: "Risk Management", Required: true, Description: "Political, security, and operational risks", Order: 10},
			{Name: "Gender Equality and Social Inclusion", Required: true, Description: "GESI mainstreaming approach", Order: 11},
			{Name: "Past Performance", Required: true, Description: "Similar projects and results achieved", Order: 12},
		},
		Formatting: map[string]string{
			"font":         "Arial",
			"font_size":    "11pt",
			"line_spacing": "Single",
			"bilingual":    "Sections may require English and French",
			"annexes":      "Extensive appendices expected",
		},
		Instructions: `Follow DAC (Development Assistance Committee) standards.
Include logframe/results framework. Demonstrate development impact.
Address cross-cutting themes (gender, environment, governance).
Comply with donor regulations (CIDA, DFID, EU, World Bank, etc.).`,
	},

	"it_services": {
		Name: "IT Services RFP",
		Sections: []Section{
			{Name: "Executive Summary", Required: true, MaxPages: 2, Order: 1},
			{Name: "Technical Solution", Required: true, Description: "Architecture, technology stack, and design", Order: 2},
			{Name: "System Requirements", Required: true, Description: "Functional and non-functional requirements", Order: 3},
			{Name: "Implementation Methodology", Required: true, Description: "Agile/Waterfall approach and delivery phases", Order: 4},
			{Name: "Security and Compliance", Required: true, Description: "Security measures, data protection, compliance", Order: 5},
			{Name: "Testing and Quality Assurance", Required: true, Description: "Testing strategy and quality gates", Order: 6},
			{Name: "Team and Roles", Required: true, Description: "Development team structure and expertise", Order: 7},
			{Name: "Project Timeline", Required: true, Description: "Gantt chart with sprints and milestones", Order: 8},
			{Name: "Pricing Model", Required: true, Description: "Fixed price, T&M, or hybrid pricing", Order: 9},
			{Name: "Support and Maintenance", Required: true, Description: "Post-launch support and SLAs", Order: 10},
			{Name: "Change Management", Required: false, Description: "User training and adoption strategy", Order: 11},
			{Name: "Technical Compliance Matrix", Required: true, Description: "Requirement-by-requirement technical compliance", Order: 12},
		},
		Formatting: map[string]string{
			"font":         "Arial or Helvetica",
			"font_size":    "10-11pt",
			"diagrams":     "Technical diagrams and architecture drawings",
			"code_samples": "Include relevant code examples if applicable",
		},
		Instructions: `Use technical detail appropriate for IT audience.
Include architecture diagrams, data flows, ERDs.
Demonstrate technical expertise and best practices.
Address scalability, performance, security.`,
	},
}

// GetTemplate returns the template for an internal ID, or nil if unknown.
func GetTemplate(name string) *Template {
	return templates[name]
}

// ListTemplates returns the available internal template IDs, sorted.
func ListTemplates() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
