package probe

import (
	"path/filepath"
	"strings"
	"time"
)

// Kind is the coarse classification of a probed file.
type Kind int

const (
	KindOther Kind = iota
	KindVideo
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindImage:
		return "image"
	default:
		return "other"
	}
}

var videoExtensions = map[string]struct{}{
	".mov": {},
	".mp4": {},
	".m4v": {},
}

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".heic": {},
}

// KindForPath classifies a path by extension without touching the file.
func KindForPath(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := videoExtensions[ext]; ok {
		return KindVideo
	}
	if _, ok := imageExtensions[ext]; ok {
		return KindImage
	}
	return KindOther
}

// IsMediaPath reports whether the path carries a video or image extension.
func IsMediaPath(path string) bool {
	return KindForPath(path) != KindOther
}

// Tags holds the textual metadata exiftool contributes. Empty strings and
// nil slices mean the tag was absent from the file.
type Tags struct {
	Title                     string
	DisplayName               string
	Description               string
	Album                     string
	Genre                     string
	Keywords                  []string
	Producer                  string
	Director                  string
	Artist                    string
	Studio                    string
	AppleProappsShareCategory string
	CreationDate              *time.Time
	DateTimeOriginal          *time.Time
	DurationText              string
}

// VideoStream holds the technical values ffprobe contributes for the first
// video stream. Pointer fields are nil when the tool did not report them.
type VideoStream struct {
	Codec     string
	BitRate   *int64 // bits per second
	Width     int
	Height    int
	Duration  *float64 // seconds
	FrameRate string
}

// ProbedFile is the immutable record produced for one path.
type ProbedFile struct {
	Path      string
	Size      int64
	ModTime   time.Time
	Kind      Kind
	Container string // lowercase extension including the dot

	Tags  Tags
	Video VideoStream

	// CreatedAt is the resolved content creation timestamp, always carrying
	// an explicit timezone. TimezoneAssumed is set when the local zone had
	// to be assumed because the file did not record one.
	CreatedAt       time.Time
	TimezoneAssumed bool
}

// Stem returns the filename without directory and extension.
func (p ProbedFile) Stem() string {
	base := filepath.Base(p.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// BitRateMbps returns the average video bitrate in megabits per second and
// whether one was reported.
func (p ProbedFile) BitRateMbps() (float64, bool) {
	if p.Video.BitRate == nil {
		return 0, false
	}
	return float64(*p.Video.BitRate) / 1e6, true
}

// IsProRes reports whether the video codec is any ProRes variant.
func (p ProbedFile) IsProRes() bool {
	return strings.HasPrefix(strings.ToLower(p.Video.Codec), "prores")
}
