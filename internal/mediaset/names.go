package mediaset

import (
	"fmt"
	"strings"

	"mediathek/internal/media/classify"
)

// Canonical filenames inside a mediaset directory. No other names are ever
// written by the pipeline.
const (
	FileMedienserver = "Video-Medienserver.mov"
	FileInternet4K   = "Video-Internet-4K.m4v"
	FileInternetHD   = "Video-Internet-HD.m4v"
	FileInternetSD   = "Video-Internet-SD.m4v"
	FilePosterPNG    = "Titelbild.png"
	FilePosterJPG    = "Titelbild.jpg"
	FileProjekt      = "Projekt.tar"
	FileMetadaten    = "Metadaten.yaml"
)

var canonicalNames = map[string]struct{}{
	FileMedienserver: {},
	FileInternet4K:   {},
	FileInternetHD:   {},
	FileInternetSD:   {},
	FilePosterPNG:    {},
	FilePosterJPG:    {},
	FileProjekt:      {},
	FileMetadaten:    {},
}

// IsCanonicalName reports whether name belongs to the closed canonical set.
func IsCanonicalName(name string) bool {
	_, ok := canonicalNames[name]
	return ok
}

// IsVideoName reports whether name is one of the canonical video renditions.
func IsVideoName(name string) bool {
	switch name {
	case FileMedienserver, FileInternet4K, FileInternetHD, FileInternetSD:
		return true
	}
	return false
}

// CanonicalName maps a rendition role (plus the source extension for
// posters) onto its canonical filename. Master has no canonical name: ProRes
// masters stay outside the mediaset directory.
func CanonicalName(role classify.Role, sourceExt string) (string, error) {
	switch role {
	case classify.RoleMedienserver:
		return FileMedienserver, nil
	case classify.RoleInternet4K:
		return FileInternet4K, nil
	case classify.RoleInternetHD:
		return FileInternetHD, nil
	case classify.RoleInternetSD:
		return FileInternetSD, nil
	case classify.RolePoster:
		if strings.EqualFold(sourceExt, ".png") {
			return FilePosterPNG, nil
		}
		return FilePosterJPG, nil
	default:
		return "", fmt.Errorf("role %s has no canonical filename", role)
	}
}

// DirName returns the mediaset directory name for a year and title.
func DirName(year, sanitizedTitle string) string {
	return year + "_" + sanitizedTitle
}
