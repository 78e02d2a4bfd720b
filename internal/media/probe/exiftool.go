package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ExiftoolRecord is the raw tag set exiftool emits for one file. Keywords may
// arrive as a string or as an ordered sequence, so it gets a custom type.
type ExiftoolRecord struct {
	Title                     string      `json:"Title"`
	DisplayName               string      `json:"DisplayName"`
	Description               string      `json:"Description"`
	Album                     string      `json:"Album"`
	Genre                     string      `json:"Genre"`
	Keywords                  StringList  `json:"Keywords"`
	Producer                  string      `json:"Producer"`
	Director                  string      `json:"Director"`
	Artist                    string      `json:"Artist"`
	Studio                    string      `json:"Studio"`
	AppleProappsShareCategory string      `json:"AppleProappsShareCategory"`
	CreationDate              string      `json:"CreationDate"`
	ContentCreateDate         string      `json:"ContentCreateDate"`
	DateTimeOriginal          string      `json:"DateTimeOriginal"`
	OffsetTimeOriginal        string      `json:"OffsetTimeOriginal"`
	Duration                  json.Number `json:"Duration"`
	MediaDuration             string      `json:"MediaDuration"`
}

// StringList accepts both a bare string and an array of strings.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if trimmed := strings.TrimSpace(single); trimmed != "" {
			*s = splitKeywordText(trimmed)
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	out := make([]string, 0, len(many))
	for _, item := range many {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	*s = out
	return nil
}

func splitKeywordText(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// runExiftool invokes exiftool once for the full tag set of path.
func runExiftool(ctx context.Context, binary, path string) (ExiftoolRecord, error) {
	cmd := exec.CommandContext(ctx, binary, "-json", "-api", "largefilesupport=1", path)
	output, err := cmd.Output()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return ExiftoolRecord{}, newError(ToolMissing, path, binary, err)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail := strings.TrimSpace(string(exitErr.Stderr))
			return ExiftoolRecord{}, newError(ToolFailed, path, binary, fmt.Errorf("%w: %s", err, detail))
		}
		return ExiftoolRecord{}, newError(ToolFailed, path, binary, err)
	}

	var records []ExiftoolRecord
	if err := json.Unmarshal(output, &records); err != nil {
		return ExiftoolRecord{}, newError(UnparseableOutput, path, binary, err)
	}
	if len(records) == 0 {
		return ExiftoolRecord{}, newError(UnparseableOutput, path, binary, errors.New("empty result array"))
	}
	return records[0], nil
}

// exifTimeLayouts covers the timestamp spellings exiftool produces. Layouts
// with explicit offsets come first so a recorded timezone is never discarded.
var exifTimeLayouts = []string{
	"2006:01:02 15:04:05-07:00",
	"2006:01:02 15:04:05Z07:00",
	"2006:01:02 15:04:05.000-07:00",
	"2006:01:02 15:04:05",
	"2006:01:02 15:04:05.000",
}

// parseExifTime parses an exiftool timestamp. When the value lacks an offset
// and extraOffset (e.g. OffsetTimeOriginal) is provided, the two are
// combined. The boolean reports whether a timezone was actually recovered;
// if not, the local zone is assumed.
func parseExifTime(value, extraOffset string) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false, errors.New("empty timestamp")
	}
	if extraOffset = strings.TrimSpace(extraOffset); extraOffset != "" && !hasOffset(value) {
		combined := value + extraOffset
		for _, layout := range []string{"2006:01:02 15:04:05-07:00", "2006:01:02 15:04:05.000-07:00"} {
			if ts, err := time.Parse(layout, combined); err == nil {
				return ts, true, nil
			}
		}
	}
	for _, layout := range exifTimeLayouts {
		ts, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if hasOffset(value) {
			return ts, true, nil
		}
		local, err := time.ParseInLocation(layout, value, time.Local)
		if err != nil {
			return ts, false, nil
		}
		return local, false, nil
	}
	return time.Time{}, false, fmt.Errorf("unrecognized timestamp %q", value)
}

func hasOffset(value string) bool {
	if strings.HasSuffix(value, "Z") {
		return true
	}
	// An offset suffix looks like +02:00 or -07:00.
	if len(value) < 6 {
		return false
	}
	tail := value[len(value)-6:]
	return (tail[0] == '+' || tail[0] == '-') && tail[3] == ':'
}
