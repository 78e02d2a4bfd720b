package assembler

import (
	"strconv"
	"strings"

	"mediathek/internal/media/probe"
	"mediathek/internal/mediaset"
)

// splitPeople splits a credit tag on ',' and ';' into individual names.
func splitPeople(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseDurationSeconds converts the duration spellings found in metadata
// tags into whole seconds: "h:mm:ss", "h:mm:ss.fff", "NN.NN s", and plain
// numeric seconds.
func ParseDurationSeconds(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if strings.HasSuffix(value, "s") && !strings.Contains(value, ":") {
		trimmed := strings.TrimSpace(strings.TrimSuffix(value, "s"))
		if seconds, err := strconv.ParseFloat(trimmed, 64); err == nil && seconds >= 0 {
			return int(seconds), true
		}
		return 0, false
	}
	if strings.Contains(value, ":") {
		parts := strings.Split(value, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return 0, false
		}
		total := 0.0
		for _, part := range parts {
			component, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil || component < 0 {
				return 0, false
			}
			total = total*60 + component
		}
		return int(total), true
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil && seconds >= 0 {
		return int(seconds), true
	}
	return 0, false
}

// applyProbedTags populates the derivable metadata fields from the elected
// source's tags. Explicit overrides are applied afterwards and win.
func applyProbedTags(meta *mediaset.Metadata, source probe.ProbedFile) {
	tags := source.Tags
	if people := splitPeople(tags.Producer); len(people) > 0 {
		meta.Videoschnitt = people
	}
	if people := splitPeople(tags.Director); len(people) > 0 {
		meta.Kamerafuehrung = people
	}
	if tags.Description != "" {
		meta.Beschreibung = tags.Description
	}
	if tags.Album != "" {
		meta.Album = tags.Album
	}
	if tags.Studio != "" {
		meta.Studio = tags.Studio
	}
	keywords := append([]string(nil), tags.Keywords...)
	if tags.Genre != "" {
		keywords = append(keywords, splitPeople(tags.Genre)...)
	}
	if len(keywords) > 0 {
		meta.Schluesselwoerter = dedupeStrings(keywords)
	}
	if seconds, ok := ParseDurationSeconds(tags.DurationText); ok && seconds > 0 {
		meta.DauerInSekunden = seconds
	} else if source.Video.Duration != nil {
		meta.DauerInSekunden = int(*source.Video.Duration)
	}
}

// untertypFromShareCategory maps the Apple share category tag onto the
// mediaset Untertyp. Anything that is not recognizably a retrospective
// defaults to Ereignis.
func untertypFromShareCategory(category string) string {
	normalized := strings.ToLower(strings.TrimSpace(category))
	switch normalized {
	case "rückblick", "rueckblick", "retrospective":
		return mediaset.UntertypRueckblick
	default:
		return mediaset.UntertypEreignis
	}
}

func dedupeStrings(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
