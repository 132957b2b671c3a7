package ai

import (
	"strings"
	"testing"
)

func TestTriagePrompt(t *testing.T) {
	got := TriagePrompt(BugReport{
		Title:       "scheduler crash",
		Description: "it crashed on boot",
		Status:      "New",
		Importance:  "High",
		Tags:        []string{"scheduler", "api"},
	})

	if !strings.HasPrefix(got, TriageInstructions) {
		t.Error("prompt does not start with the triage instructions")
	}
	for _, want := range []string{
		"Title: scheduler crash",
		"Status: New",
		"Importance: High",
		"Tags: scheduler, api",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt is missing %q", want)
		}
	}
	if !strings.HasSuffix(got, "it crashed on boot") {
		t.Error("prompt does not end with the bug description")
	}
}

func TestTriagePromptOmitsEmptyTags(t *testing.T) {
	got := TriagePrompt(BugReport{Title: "t", Description: "d", Status: "New", Importance: "Undecided"})
	if strings.Contains(got, "Tags:") {
		t.Errorf("prompt has a Tags line without tags:\n%s", got)
	}
}
