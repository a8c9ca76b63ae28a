package segmentation_test

import (
	"strings"
	"testing"

	"github.com/JaimeStill/scorecard/internal/segmentation"
)

func TestExtractIdentity(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantID   string
		wantName string
	}{
		{
			name:     "student id and name headers",
			text:     "Student ID: A12345\nName: Jane Doe\n\nEssay begins here.",
			wantID:   "A12345",
			wantName: "Jane Doe",
		},
		{
			name:     "roll number",
			text:     "Roll No: 2024-117\nSubmitted by: Sam Smith",
			wantID:   "2024-117",
			wantName: "Sam Smith",
		},
		{
			name:     "registration number",
			text:     "Registration: REG-9981",
			wantID:   "REG-9981",
			wantName: "Unknown",
		},
		{
			name:     "matriculation number",
			text:     "Matriculation No: M-2231\nBy: Alex Chen",
			wantID:   "M-2231",
			wantName: "Alex Chen",
		},
		{
			name:     "case insensitive",
			text:     "STUDENT ID: b7 \nNAME: Pat Lee",
			wantID:   "b7",
			wantName: "Pat Lee",
		},
		{
			name:     "no identity at all",
			text:     "An essay about economics with no headers.",
			wantID:   "Unknown",
			wantName: "Unknown",
		},
		{
			name:     "empty text",
			text:     "",
			wantID:   "Unknown",
			wantName: "Unknown",
		},
		{
			name:     "single character name rejected",
			text:     "ID: X99\nName: J",
			wantID:   "X99",
			wantName: "Unknown",
		},
		{
			name:     "name whitespace collapsed",
			text:     "Name: Mary   Jane\t Watson",
			wantID:   "Unknown",
			wantName: "Mary Jane Watson",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := segmentation.ExtractIdentity(tt.text)
			if got.ID != tt.wantID {
				t.Errorf("id: got %q, want %q", got.ID, tt.wantID)
			}
			if got.Name != tt.wantName {
				t.Errorf("name: got %q, want %q", got.Name, tt.wantName)
			}
		})
	}
}

func TestExtractIdentityScanWindow(t *testing.T) {
	padding := strings.Repeat("x", 2000)
	text := padding + "\nStudent ID: LATE-1\nName: Too Late"

	got := segmentation.ExtractIdentity(text)
	if got.ID != "Unknown" {
		t.Errorf("id beyond window: got %q, want Unknown", got.ID)
	}
	if got.Name != "Unknown" {
		t.Errorf("name beyond window: got %q, want Unknown", got.Name)
	}
}

func TestExtractIdentityScanWindowCountsRunes(t *testing.T) {
	// 800 two-byte runes put the header past byte 1500 but well inside
	// the 1500-rune window.
	padding := strings.Repeat("é", 800)
	text := padding + "\nStudent ID: IN-RANGE\nName: Ana Gross"

	got := segmentation.ExtractIdentity(text)
	if got.ID != "IN-RANGE" {
		t.Errorf("id: got %q, want IN-RANGE", got.ID)
	}
	if got.Name != "Ana Gross" {
		t.Errorf("name: got %q, want Ana Gross", got.Name)
	}
}

func TestExtractIdentityNameCap(t *testing.T) {
	long := strings.Repeat("Abcd ", 30)
	got := segmentation.ExtractIdentity("Name: " + long)

	if len([]rune(got.Name)) > 50 {
		t.Errorf("name length: got %d runes, want <= 50", len([]rune(got.Name)))
	}
	if got.Name == "Unknown" {
		t.Error("long name should still be extracted")
	}
}

func TestExtractIdentityDeterministic(t *testing.T) {
	text := "Student ID: D-42\nName: Casey Park"
	first := segmentation.ExtractIdentity(text)
	for range 5 {
		if got := segmentation.ExtractIdentity(text); got != first {
			t.Fatalf("non-deterministic result: %+v vs %+v", got, first)
		}
	}
}
