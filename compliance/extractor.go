package compliance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/c360studio/rfpflow/llm"
	"github.com/c360studio/rfpflow/model"
)

// ErrExtractionDegraded signals that extraction produced zero requirements
// because the LLM call failed. The caller must treat the run's compliance
// score as vacuous rather than a genuine 100%.
var ErrExtractionDegraded = errors.New("requirement extraction degraded")

// maxRFPChars truncates very long RFP text before sending it to the LLM.
const maxRFPChars = 8000

// Extractor turns raw RFP text into a deduplicated, categorized, filtered
// list of requirements via a single LLM call plus deterministic
// post-processing.
type Extractor struct {
	client llm.Completer
	logger *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithExtractorLogger sets the logger.
func WithExtractorLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates a requirement extractor backed by the given client.
func NewExtractor(client llm.Completer, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract pulls structured requirements out of RFP text.
//
// If the LLM call fails, Extract returns an empty list together with an
// error wrapping ErrExtractionDegraded: zero requirements is a recoverable
// condition the caller surfaces as an anomaly, not a fatal failure.
func (e *Extractor) Extract(ctx context.Context, runID, rfpText string) ([]Requirement, error) {
	resp, err := e.client.Complete(ctx, llm.Request{
		Agent: model.AgentExtractor,
		Task:  model.TaskExtraction,
		RunID: runID,
		Messages: []llm.Message{
			{Role: "system", Content: extractionSystemPrompt},
			{Role: "user", Content: buildExtractionPrompt(rfpText)},
		},
	})
	if err != nil {
		e.logger.Warn("Requirement extraction LLM call failed, continuing with zero requirements",
			"run_id", runID,
			"error", err)
		return nil, fmt.Errorf("%w: %v", ErrExtractionDegraded, err)
	}

	requirements := parseRequirements(resp.Content)
	requirements = applyLanguageOverrides(requirements)
	requirements = e.filterAdministrative(requirements)

	e.logger.Info("Requirements extracted",
		"run_id", runID,
		"count", len(requirements))

	return requirements, nil
}

const extractionSystemPrompt = `You are an expert at analyzing RFP documents and extracting PROPOSAL CONTENT requirements.

Your task is to identify requirements that relate to THE PROPOSAL CONTENT ITSELF, including:
- Mandatory content requirements (MUST, SHALL, REQUIRED)
- Optional content requirements (SHOULD, MAY, OPTIONAL)
- Deliverables and outputs (what the proposal must describe/provide)
- Technical specifications and capabilities required
- Business qualifications and experience to demonstrate
- Evaluation criteria (topics/areas proposals will be scored on)

IMPORTANT - EXCLUDE these administrative/submission items:
- Submission instructions (how/where to submit, email addresses, upload portals)
- Deadline and date requirements (when to submit)
- Contact information and communication procedures
- Document format specifications (PDF, Word, page limits)
- Administrative procedural steps (registration, forms, signatures)

ONLY extract requirements that describe WHAT THE PROPOSAL MUST CONTAIN OR ADDRESS.
Do NOT extract requirements about HOW/WHERE/WHEN to submit the proposal.

Be thorough and precise. Extract content requirements exactly as stated in the RFP.`

func buildExtractionPrompt(rfpText string) string {
	if len(rfpText) > maxRFPChars {
		rfpText = rfpText[:maxRFPChars]
	}

	return fmt.Sprintf(`Analyze this RFP document and extract ALL requirements.

For each requirement, provide:
1. A unique ID (R001, R002, etc.)
2. The exact requirement text
3. Whether it's mandatory or optional
4. The category (mandatory, optional, deliverable, technical, business, evaluation_criteria)
5. Priority level (1=critical, 2=high, 3=medium, 4=low, 5=optional)
6. Section reference from the RFP

Format each requirement as:
ID: R###
TEXT: [requirement text]
MANDATORY: yes/no
CATEGORY: [category]
PRIORITY: [1-5]
SECTION: [section reference]
---

RFP DOCUMENT:
%s

Extract ALL requirements now:`, rfpText)
}

// parseRequirements converts the fixed KEY: value block format into
// Requirement records. Blocks start at an "ID:" line; the "---" sentinel
// between blocks is ignored. Malformed or missing fields fall back to
// defaults rather than failing the whole extraction.
func parseRequirements(response string) []Requirement {
	var requirements []Requirement
	var current map[string]string

	flush := func() {
		if current != nil {
			requirements = append(requirements, buildRequirement(current))
		}
	}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "ID:"):
			flush()
			current = map[string]string{"id": strings.TrimSpace(line[3:])}
		case current == nil:
			// Preamble before the first block
		case strings.HasPrefix(line, "TEXT:"):
			current["text"] = strings.TrimSpace(line[5:])
		case strings.HasPrefix(line, "MANDATORY:"):
			current["mandatory"] = strings.TrimSpace(line[10:])
		case strings.HasPrefix(line, "CATEGORY:"):
			current["category"] = strings.TrimSpace(line[9:])
		case strings.HasPrefix(line, "PRIORITY:"):
			current["priority"] = strings.TrimSpace(line[9:])
		case strings.HasPrefix(line, "SECTION:"):
			current["section"] = strings.TrimSpace(line[8:])
		}
	}
	flush()

	return requirements
}

func buildRequirement(fields map[string]string) Requirement {
	id := fields["id"]
	if id == "" {
		id = "R000"
	}

	priority := 3
	if p := fields["priority"]; p != "" {
		if n, err := strconv.Atoi(p[:1]); err == nil && n >= 1 && n <= 5 {
			priority = n
		}
	}

	mandatory := true
	if m, ok := fields["mandatory"]; ok {
		mandatory = strings.Contains(strings.ToLower(m), "yes")
	}

	text := fields["text"]

	return Requirement{
		ID:               id,
		Text:             text,
		Category:         ParseCategory(fields["category"]),
		Priority:         priority,
		SectionReference: fields["section"],
		Keywords:         ExtractKeywords(text),
		IsMandatory:      mandatory,
	}
}

var (
	mandatoryLanguage = []string{"must", "shall", "required", "mandatory"}
	optionalLanguage  = []string{"should", "may", "optional", "recommended"}
)

// applyLanguageOverrides enforces explicit RFP language over whatever the
// LLM tagged: MUST/SHALL forces mandatory with priority at most 2,
// SHOULD/MAY forces optional with priority at least 4.
func applyLanguageOverrides(requirements []Requirement) []Requirement {
	for i := range requirements {
		lower := strings.ToLower(requirements[i].Text)

		if containsAny(lower, mandatoryLanguage) {
			requirements[i].IsMandatory = true
			if requirements[i].Priority > 2 {
				requirements[i].Priority = 2
			}
		} else if containsAny(lower, optionalLanguage) {
			requirements[i].IsMandatory = false
			if requirements[i].Priority < 4 {
				requirements[i].Priority = 4
			}
		}
	}
	return requirements
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// administrativePatterns match submission-logistics text that must not be
// confused with proposal content obligations. French variants cover
// bilingual Canadian RFPs.
var administrativePatterns = []*regexp.Regexp{
	// Submission methods
	regexp.MustCompile(`transmi[st].*par.*courriel`),
	regexp.MustCompile(`send.*by.*email`),
	regexp.MustCompile(`submit.*via.*email`),
	regexp.MustCompile(`upload.*to.*portal`),
	regexp.MustCompile(`deliver.*to.*address`),

	// Deadline/timing
	regexp.MustCompile(`\bdate\b.*limit`),
	regexp.MustCompile(`deadline`),
	regexp.MustCompile(`before.*\d{4}`),
	regexp.MustCompile(`no later than`),
	regexp.MustCompile(`au plus tard`),

	// Contact/communication
	regexp.MustCompile(`contact.*for.*question`),
	regexp.MustCompile(`adresse.*courriel`),
	regexp.MustCompile(`email address`),
	regexp.MustCompile(`phone number`),
	regexp.MustCompile(`contacter.*pour`),

	// Document format (not content)
	regexp.MustCompile(`format.*pdf`),
	regexp.MustCompile(`page limit`),
	regexp.MustCompile(`font size`),
	regexp.MustCompile(`margin`),
	regexp.MustCompile(`document format`),

	// Administrative procedures
	regexp.MustCompile(`registration.*required`),
	regexp.MustCompile(`signature.*required`),
	regexp.MustCompile(`form.*attached`),
	regexp.MustCompile(`certificat.*requis`),
}

var (
	submissionTerms = []string{"transmi", "submit", "send", "email", "courriel",
		"contact", "adresse", "upload"}
	contentTerms = []string{"describe", "provide", "include", "address",
		"demonstrate", "explain"}
)

// filterAdministrative drops requirements that are purely about submission
// logistics. A requirement is removed only when it carries an
// administrative signal (pattern or submission term) AND lacks any
// content-bearing verb; a requirement mentioning a deadline but also
// demanding a technical description is retained.
func (e *Extractor) filterAdministrative(requirements []Requirement) []Requirement {
	filtered := make([]Requirement, 0, len(requirements))
	for _, req := range requirements {
		lower := strings.ToLower(req.Text)

		isAdministrative := containsAny(lower, submissionTerms)
		if !isAdministrative {
			for _, pattern := range administrativePatterns {
				if pattern.MatchString(lower) {
					isAdministrative = true
					break
				}
			}
		}

		if isAdministrative && !containsAny(lower, contentTerms) {
			e.logger.Debug("Filtered administrative requirement",
				"id", req.ID,
				"text", truncate(req.Text, 60))
			continue
		}
		filtered = append(filtered, req)
	}
	return filtered
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
