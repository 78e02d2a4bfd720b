// Package probe extracts a normalized metadata record from a single media
// file by combining an exiftool tag dump with an ffprobe stream inspection.
//
// Merge policy: ffprobe wins for codec, bitrate, and resolution; exiftool
// wins for textual tags. Fields absent from both stay absent.
package probe
