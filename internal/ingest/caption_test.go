package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unishare/unishare/internal/telegram"
)

func TestParseCaption(t *testing.T) {
	tests := []struct {
		name     string
		caption  string
		fallback string
		want     ParsedCaption
	}{
		{
			name:    "full triple",
			caption: "HCMUS - CNTT - Bài giảng Thuật toán",
			want: ParsedCaption{
				School:      "HCMUS",
				Major:       "CNTT",
				Description: "Bài giảng Thuật toán",
				Tags:        []string{"hcmus", "cntt"},
			},
		},
		{
			name:    "description keeps inner delimiter",
			caption: "HCMUS - CNTT - Phần 1 - Phần 2",
			want: ParsedCaption{
				School:      "HCMUS",
				Major:       "CNTT",
				Description: "Phần 1 - Phần 2",
				Tags:        []string{"hcmus", "cntt"},
			},
		},
		{
			name:     "school only falls back to file name",
			caption:  "HCMUS",
			fallback: "notes.pdf",
			want: ParsedCaption{
				School:      "HCMUS",
				Description: "notes.pdf",
				Tags:        []string{"hcmus"},
			},
		},
		{
			name:     "empty caption",
			caption:  "",
			fallback: "notes.pdf",
			want: ParsedCaption{
				Description: "notes.pdf",
				Tags:        []string{},
			},
		},
		{
			name:    "hashtag line",
			caption: "HCMUS - CNTT - De thi\n#algo #midterm",
			want: ParsedCaption{
				School:      "HCMUS",
				Major:       "CNTT",
				Description: "De thi",
				Tags:        []string{"algo", "midterm", "hcmus", "cntt"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCaption(tt.caption, tt.fallback)
			assert.Equal(t, tt.want, got)
		})
	}
}

// The generated caption must parse back to the same structured fields
// whenever none of them contain the delimiter.
func TestCaptionRoundTrip(t *testing.T) {
	tests := []struct {
		school, major, description string
	}{
		{"S", "M", "D"},
		{"HCMUS", "CNTT", "Bài giảng Thuật toán"},
		{"", "CNTT", "De thi"},
		{"HCMUS", "", "De thi"},
		{"", "", "De thi cuoi ky"},
	}
	for _, tt := range tests {
		caption := telegram.BuildCaption(tt.school, tt.major, tt.description, nil)
		parsed := ParseCaption(caption, "")
		assert.Equal(t, tt.school, parsed.School, "caption %q", caption)
		assert.Equal(t, tt.major, parsed.Major, "caption %q", caption)
		assert.Equal(t, tt.description, parsed.Description, "caption %q", caption)
	}
}
