package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCaption(t *testing.T) {
	tests := []struct {
		name        string
		school      string
		major       string
		description string
		tags        []string
		want        string
	}{
		{
			name:        "full metadata",
			school:      "HCMUS",
			major:       "CNTT",
			description: "Bai giang Thuat toan",
			tags:        []string{"algo", "midterm"},
			want:        "HCMUS - CNTT - Bai giang Thuat toan\n#algo #midterm",
		},
		{
			name:        "description only keeps positions",
			description: "De thi giua ky",
			want:        " -  - De thi giua ky",
		},
		{
			name:   "school only",
			school: "HCMUS",
			want:   "HCMUS -  - ",
		},
		{
			name: "tags only",
			tags: []string{"algo"},
			want: "#algo",
		},
		{
			name: "empty",
			want: "",
		},
		{
			name: "tags already prefixed and blank entries skipped",
			tags: []string{"#algo", "", "  ", "midterm"},
			want: "#algo #midterm",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildCaption(tt.school, tt.major, tt.description, tt.tags)
			assert.Equal(t, tt.want, got)
		})
	}
}
