package classify

import "mediathek/internal/media/probe"

// Role is the rendition slot a file fills inside a mediaset.
type Role int

const (
	RoleUnknown Role = iota
	RoleMaster
	RoleMedienserver
	RoleInternet4K
	RoleInternetHD
	RoleInternetSD
	RolePoster
)

func (r Role) String() string {
	switch r {
	case RoleMaster:
		return "Master"
	case RoleMedienserver:
		return "Medienserver"
	case RoleInternet4K:
		return "Internet-4K"
	case RoleInternetHD:
		return "Internet-HD"
	case RoleInternetSD:
		return "Internet-SD"
	case RolePoster:
		return "Titelbild"
	default:
		return "Unknown"
	}
}

// Bitrate partitions in megabits per second.
const (
	medienserverMinMbps = 50
	hevcAMinMbps        = 80
)

// ClassifyVideo maps a probed video onto its rendition role. ProRes always
// classifies as Master regardless of bitrate or resolution.
func ClassifyVideo(file probe.ProbedFile) Role {
	if file.Kind != probe.KindVideo {
		return RoleUnknown
	}
	if file.IsProRes() {
		return RoleMaster
	}
	if mbps, ok := file.BitRateMbps(); ok && mbps > medienserverMinMbps {
		return RoleMedienserver
	}
	switch height := file.Video.Height; {
	case height >= 2048:
		return RoleInternet4K
	case height == 1080:
		return RoleInternetHD
	case height > 0 && height <= 540:
		return RoleInternetSD
	default:
		return RoleUnknown
	}
}

// IsHEVCA reports whether the file carries the informal high-bitrate HEVC
// display tag. Retained for compatibility with older library listings; it
// is a tag, not a role.
func IsHEVCA(file probe.ProbedFile) bool {
	if file.Kind != probe.KindVideo {
		return false
	}
	mbps, ok := file.BitRateMbps()
	return ok && mbps > hevcAMinMbps
}

// Classify derives key, role, and content date in one step.
func Classify(file probe.ProbedFile) (Key, Role) {
	key := DeriveKey(file)
	switch file.Kind {
	case probe.KindVideo:
		return key, ClassifyVideo(file)
	case probe.KindImage:
		return key, RolePoster
	default:
		return key, RoleUnknown
	}
}
