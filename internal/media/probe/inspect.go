package probe

import "context"

// InspectVideo runs the stream inspection alone, skipping tag extraction.
// The transcode supervisor uses it to verify finished outputs.
func InspectVideo(ctx context.Context, ffprobeBinary, path string) (VideoStream, error) {
	return ffprobeRunner(ctx, ffprobeBinary, path)
}
