package formatting_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/scorecard/pkg/formatting"
)

type payload struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    payload
		wantErr bool
	}{
		{
			name:    "direct json",
			content: `{"name": "quiz", "score": 7}`,
			want:    payload{Name: "quiz", Score: 7},
		},
		{
			name:    "json with surrounding whitespace",
			content: "\n  {\"name\": \"quiz\", \"score\": 7}  \n",
			want:    payload{Name: "quiz", Score: 7},
		},
		{
			name:    "fenced code block",
			content: "Here you go:\n```json\n{\"name\": \"quiz\", \"score\": 7}\n```\nDone.",
			want:    payload{Name: "quiz", Score: 7},
		},
		{
			name:    "fence without language tag",
			content: "```\n{\"name\": \"quiz\", \"score\": 7}\n```",
			want:    payload{Name: "quiz", Score: 7},
		},
		{
			name:    "object embedded in prose",
			content: `The result is {"name": "quiz", "score": 7} as requested.`,
			want:    payload{Name: "quiz", Score: 7},
		},
		{
			name:    "no json at all",
			content: "I could not produce a grade for this submission.",
			wantErr: true,
		},
		{
			name:    "malformed json everywhere",
			content: "```json\n{\"name\": quiz}\n```",
			wantErr: true,
		},
		{
			name:    "empty content",
			content: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.Parse[payload](tt.content)
			if tt.wantErr {
				if !errors.Is(err, formatting.ErrParseFailed) {
					t.Fatalf("error: got %v, want ErrParseFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	if got := formatting.ParseInt("12"); got != 12 {
		t.Errorf("got %d, want 12", got)
	}
	if got := formatting.ParseInt(""); got != 0 {
		t.Errorf("empty: got %d, want 0", got)
	}
	if got := formatting.ParseInt("twelve"); got != 0 {
		t.Errorf("malformed: got %d, want 0", got)
	}
}
