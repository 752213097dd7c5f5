package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFixtures_BaseOnly(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "mock-writer.md", "## Executive Summary\nDraft proposal.")
	writeFixture(t, dir, "mock-evaluator.md", "Score: 90/100")

	fixtures, err := loadFixtures(dir)
	if err != nil {
		t.Fatalf("loadFixtures: %v", err)
	}

	if len(fixtures) != 2 {
		t.Fatalf("expected 2 models, got %d", len(fixtures))
	}

	// Each model should have exactly 1 fixture (the base)
	for model, seq := range fixtures {
		if len(seq) != 1 {
			t.Errorf("model %q: expected 1 fixture, got %d", model, len(seq))
		}
	}
}

func TestLoadFixtures_Sequential(t *testing.T) {
	dir := t.TempDir()

	// Numbered fixtures for the evaluator (failing score then passing)
	writeFixture(t, dir, "mock-evaluator.1.md", "Score: 60/100\n\n## Weaknesses\n- Thin pricing")
	writeFixture(t, dir, "mock-evaluator.2.md", "Score: 88/100\n\n## Strengths\n- Fixed pricing")
	// Base fallback
	writeFixture(t, dir, "mock-evaluator.md", "Score: 88/100\nfallback")

	// Non-sequential model
	writeFixture(t, dir, "mock-writer.md", "## Executive Summary\nDraft.")

	fixtures, err := loadFixtures(dir)
	if err != nil {
		t.Fatalf("loadFixtures: %v", err)
	}

	// Evaluator should have 3 entries: .1, .2, base
	evalSeq := fixtures["mock-evaluator"]
	if len(evalSeq) != 3 {
		t.Fatalf("mock-evaluator: expected 3 fixtures, got %d", len(evalSeq))
	}

	// Verify order: numbered first (sorted), then base
	if !strings.Contains(evalSeq[0], "60/100") {
		t.Errorf("fixture[0] should be the failing score, got: %s", evalSeq[0])
	}
	if !strings.Contains(evalSeq[1], "Fixed pricing") {
		t.Errorf("fixture[1] should be the passing score, got: %s", evalSeq[1])
	}
	if !strings.Contains(evalSeq[2], "fallback") {
		t.Errorf("fixture[2] should be the base fallback, got: %s", evalSeq[2])
	}

	// Writer should have 1 entry
	writerSeq := fixtures["mock-writer"]
	if len(writerSeq) != 1 {
		t.Fatalf("mock-writer: expected 1 fixture, got %d", len(writerSeq))
	}
}

func TestLoadFixtures_NumberedOnly(t *testing.T) {
	dir := t.TempDir()

	// Only numbered, no base file
	writeFixture(t, dir, "mock-evaluator.1.md", "Score: 60/100")
	writeFixture(t, dir, "mock-evaluator.2.md", "Score: 88/100")

	fixtures, err := loadFixtures(dir)
	if err != nil {
		t.Fatalf("loadFixtures: %v", err)
	}

	seq := fixtures["mock-evaluator"]
	if len(seq) != 2 {
		t.Fatalf("expected 2 fixtures, got %d", len(seq))
	}
}

func TestLoadFixtures_RejectsInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "mock-writer.json", "{not json")

	if _, err := loadFixtures(dir); err == nil {
		t.Fatal("expected error for invalid JSON fixture")
	}
}

func TestLoadFixtures_EmptyDir(t *testing.T) {
	dir := t.TempDir()

	_, err := loadFixtures(dir)
	if err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestSequentialFixtureSelection(t *testing.T) {
	fixtures := map[string][]string{
		"mock-evaluator": {
			"Score: 60/100",
			"Score: 88/100",
		},
		"mock-writer": {
			"## Executive Summary\nDraft proposal.",
		},
	}

	s := newServer(fixtures)

	// First call to mock-evaluator → failing score
	resp1 := doCompletion(t, s, "mock-evaluator")
	if !strings.Contains(resp1, "60/100") {
		t.Errorf("call 1: expected failing score, got: %s", resp1)
	}

	// Second call to mock-evaluator → passing score
	resp2 := doCompletion(t, s, "mock-evaluator")
	if !strings.Contains(resp2, "88/100") {
		t.Errorf("call 2: expected passing score, got: %s", resp2)
	}

	// Third call (beyond sequence) → repeats last
	resp3 := doCompletion(t, s, "mock-evaluator")
	if !strings.Contains(resp3, "88/100") {
		t.Errorf("call 3: expected repeat of last fixture, got: %s", resp3)
	}

	// Writer calls are independent
	writerResp := doCompletion(t, s, "mock-writer")
	if !strings.Contains(writerResp, "Executive Summary") {
		t.Errorf("writer: expected proposal draft, got: %s", writerResp)
	}
}

func TestStatsEndpoint(t *testing.T) {
	fixtures := map[string][]string{
		"mock-evaluator": {"Score: 88/100"},
		"mock-writer":    {"## Executive Summary"},
	}

	s := newServer(fixtures)

	// Make some calls
	doCompletion(t, s, "mock-evaluator")
	doCompletion(t, s, "mock-evaluator")
	doCompletion(t, s, "mock-writer")

	// Query stats
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()
	s.handleStats(w, req)

	var stats struct {
		TotalCalls   int64            `json:"total_calls"`
		CallsByModel map[string]int64 `json:"calls_by_model"`
	}
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}

	if stats.TotalCalls != 3 {
		t.Errorf("total_calls: expected 3, got %d", stats.TotalCalls)
	}
	if stats.CallsByModel["mock-evaluator"] != 2 {
		t.Errorf("mock-evaluator calls: expected 2, got %d", stats.CallsByModel["mock-evaluator"])
	}
	if stats.CallsByModel["mock-writer"] != 1 {
		t.Errorf("mock-writer calls: expected 1, got %d", stats.CallsByModel["mock-writer"])
	}
}

func TestRequestsEndpointCapturesMessages(t *testing.T) {
	fixtures := map[string][]string{
		"mock-writer": {"## Executive Summary"},
	}

	s := newServer(fixtures)

	body := strings.NewReader(`{
		"model": "mock-writer",
		"messages": [
			{"role": "system", "content": "You are a proposal writer."},
			{"role": "user", "content": "BLUEPRINT: ..."}
		]
	}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", body)
	w := httptest.NewRecorder()
	s.handleChatCompletions(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}

	reqReq := httptest.NewRequest(http.MethodGet, "/requests?model=mock-writer", nil)
	reqW := httptest.NewRecorder()
	s.handleRequests(reqW, reqReq)

	var captured struct {
		RequestsByModel map[string][]capturedRequest `json:"requests_by_model"`
	}
	if err := json.NewDecoder(reqW.Body).Decode(&captured); err != nil {
		t.Fatalf("decode requests: %v", err)
	}

	reqs := captured.RequestsByModel["mock-writer"]
	if len(reqs) != 1 {
		t.Fatalf("expected 1 captured request, got %d", len(reqs))
	}
	if len(reqs[0].Messages) != 2 || reqs[0].Messages[0].Role != "system" {
		t.Errorf("captured messages = %+v", reqs[0].Messages)
	}
	if reqs[0].CallIndex != 1 {
		t.Errorf("call_index = %d, want 1", reqs[0].CallIndex)
	}
}

func TestStripMockPrefix(t *testing.T) {
	fixtures := map[string][]string{
		"writer": {"## Executive Summary"},
	}

	s := newServer(fixtures)

	// Request with "mock-" prefix should resolve to "writer"
	resp := doCompletion(t, s, "mock-writer")
	if !strings.Contains(resp, "Executive Summary") {
		t.Errorf("expected mock-prefix stripping to resolve, got: %s", resp)
	}
}

func TestNumberedFileRegex(t *testing.T) {
	tests := []struct {
		filename string
		wantBase string
		wantNum  string
		match    bool
	}{
		{"mock-evaluator.1.md", "mock-evaluator", "1", true},
		{"mock-evaluator.2.txt", "mock-evaluator", "2", true},
		{"mock-evaluator.10.json", "mock-evaluator", "10", true},
		{"mock-evaluator.md", "", "", false},
		{"mock-writer.json", "", "", false},
	}

	for _, tt := range tests {
		matches := numberedFileRe.FindStringSubmatch(tt.filename)
		if tt.match {
			if matches == nil {
				t.Errorf("%s: expected match, got nil", tt.filename)
				continue
			}
			if matches[1] != tt.wantBase {
				t.Errorf("%s: base=%q, want %q", tt.filename, matches[1], tt.wantBase)
			}
			if matches[2] != tt.wantNum {
				t.Errorf("%s: num=%q, want %q", tt.filename, matches[2], tt.wantNum)
			}
		} else {
			if matches != nil {
				t.Errorf("%s: expected no match, got %v", tt.filename, matches)
			}
		}
	}
}

// --- helpers ---

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func doCompletion(t *testing.T, s *server, model string) string {
	t.Helper()
	body := strings.NewReader(`{"model":"` + model + `","messages":[{"role":"user","content":"test"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", body)
	w := httptest.NewRecorder()
	s.handleChatCompletions(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("model %s: status %d, body: %s", model, w.Code, w.Body.String())
	}

	var resp chatResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(resp.Choices) == 0 {
		t.Fatalf("no choices in response")
	}

	return resp.Choices[0].Message.Content
}
