package classify

import (
	"strings"
	"time"

	"mediathek/internal/media/probe"
	"mediathek/internal/textutil"
)

// Key identifies the mediaset a file belongs to.
type Key struct {
	// Title is the normalized human-readable mediaset title.
	Title string
	// FullTitle is the untrimmed source string including any date prefix;
	// poster matching compares filename stems against it.
	FullTitle string
	// ContentDate is the ISO date stripped from the title prefix, empty
	// when the title carried none.
	ContentDate string
}

// FileName returns the filesystem form of the key title.
func (k Key) FileName() string {
	return textutil.SanitizeFileName(k.Title)
}

// ContentTime parses the content date, falling back to the probed creation
// timestamp when the title carried no date prefix.
func (k Key) ContentTime(file probe.ProbedFile) time.Time {
	if k.ContentDate != "" {
		if ts, err := time.ParseInLocation("2006-01-02", k.ContentDate, time.Local); err == nil {
			return ts
		}
	}
	return file.CreatedAt
}

// DeriveKey computes the mediaset key for a probed file. The source string
// is the first of: Title tag, DisplayName tag, filename stem. A leading
// YYYY-MM-DD token (space or underscore separated) is stripped and captured
// as the content date.
func DeriveKey(file probe.ProbedFile) Key {
	source := strings.TrimSpace(file.Tags.Title)
	if source == "" {
		source = strings.TrimSpace(file.Tags.DisplayName)
	}
	if source == "" {
		source = file.Stem()
	}

	key := Key{FullTitle: source}
	if date, rest, ok := textutil.SplitDatePrefix(source); ok {
		key.ContentDate = date
		source = rest
	}
	key.Title = textutil.NormalizeTitle(source)
	return key
}
