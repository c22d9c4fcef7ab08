package ingest

import (
	"strings"

	"github.com/unishare/unishare/internal/telegram"
)

// ParsedCaption is the structured metadata recovered from a free-text caption.
type ParsedCaption struct {
	School      string
	Major       string
	Description string
	Tags        []string
}

// ParseCaption splits a caption back into school/major/description using the
// "school - major - description" convention. The description is the greedy
// tail, so a description containing the delimiter stays intact while school
// and major never absorb it; a description that itself contains " - " inside
// the first two segments is the documented lossy case. Missing segments
// default to empty, and an empty description falls back to the file name.
// Hashtag lines become tags, seeded with the lowercased school and major.
func ParseCaption(caption, fallbackDescription string) ParsedCaption {
	lines := strings.Split(caption, "\n")
	parts := strings.Split(lines[0], telegram.CaptionDelimiter)

	parsed := ParsedCaption{School: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		parsed.Major = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		parsed.Description = strings.TrimSpace(strings.Join(parts[2:], telegram.CaptionDelimiter))
	}
	if parsed.Description == "" {
		parsed.Description = strings.TrimSpace(fallbackDescription)
	}

	parsed.Tags = collectTags(lines[1:], parsed.School, parsed.Major)
	return parsed
}

func collectTags(extraLines []string, school, major string) []string {
	tags := make([]string, 0, 4)
	seen := map[string]struct{}{}
	add := func(tag string) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			return
		}
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	for _, line := range extraLines {
		for _, field := range strings.Fields(line) {
			if strings.HasPrefix(field, "#") {
				add(strings.TrimPrefix(field, "#"))
			}
		}
	}
	add(school)
	add(major)
	return tags
}
