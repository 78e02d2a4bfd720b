package preflight

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"mediathek/internal/config"
	"mediathek/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is
// readable and writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDirectoryReadable verifies that the directory exists and can be
// listed. Source directories are never written to.
func CheckDirectoryReadable(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable)", path)}
}

// CheckFreeSpace verifies that the filesystem holding path has at least
// minBytes available.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s free, need %s",
			humanize.IBytes(free), humanize.IBytes(minBytes))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s free", humanize.IBytes(free))}
}

// CheckTools evaluates the availability of every external binary the
// pipeline shells out to.
func CheckTools(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "ExifTool",
			Command:     cfg.ExiftoolBinary(),
			Description: "Required for tag extraction",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for stream inspection",
		},
		{
			Name:        "Transcoder",
			Command:     cfg.TranscoderBinary(),
			Description: "Required for rendition transcodes",
		},
		{
			Name:        "Tagger",
			Command:     cfg.TaggerBinary(),
			Description: "Marks sources handed to the transcoder",
			Optional:    true,
		},
		{
			Name:        "Image converter",
			Command:     cfg.ImageConverterBinary(),
			Description: "Converts posters to Adobe RGB JPEG",
			Optional:    true,
		},
	}
	return deps.CheckBinaries(requirements)
}
