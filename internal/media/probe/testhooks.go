package probe

import "context"

// Tool runners are indirected so tests can substitute fakes without external
// binaries.
var (
	exiftoolRunner = runExiftool
	ffprobeRunner  = runFFprobe
)

// SetExiftoolRunnerForTests replaces the exiftool invocation and returns a
// restore function.
func SetExiftoolRunnerForTests(fn func(ctx context.Context, binary, path string) (ExiftoolRecord, error)) func() {
	previous := exiftoolRunner
	exiftoolRunner = fn
	return func() { exiftoolRunner = previous }
}

// SetFFprobeRunnerForTests replaces the ffprobe invocation and returns a
// restore function.
func SetFFprobeRunnerForTests(fn func(ctx context.Context, binary, path string) (VideoStream, error)) func() {
	previous := ffprobeRunner
	ffprobeRunner = fn
	return func() { ffprobeRunner = previous }
}
