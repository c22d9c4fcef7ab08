package telegram

import "strings"

// CaptionDelimiter separates the school, major, and description segments of an
// outbound caption. The convention is lossy for descriptions containing the
// delimiter itself; the description is always the greedy tail on the parse
// side, so school and major never absorb it.
const CaptionDelimiter = " - "

// BuildCaption renders document metadata into the caption attached to the
// outbound post: one "school - major - description" line plus a hashtag line.
// The triple line is emitted whenever any segment is present so the ingestion
// side can split it back positionally.
func BuildCaption(school, major, description string, tags []string) string {
	school = strings.TrimSpace(school)
	major = strings.TrimSpace(major)
	description = strings.TrimSpace(description)

	var lines []string
	if school != "" || major != "" || description != "" {
		lines = append(lines, strings.Join([]string{school, major, description}, CaptionDelimiter))
	}
	if tagLine := buildTagLine(tags); tagLine != "" {
		lines = append(lines, tagLine)
	}
	return strings.Join(lines, "\n")
}

func buildTagLine(tags []string) string {
	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if tag == "" {
			continue
		}
		parts = append(parts, "#"+tag)
	}
	return strings.Join(parts, " ")
}
