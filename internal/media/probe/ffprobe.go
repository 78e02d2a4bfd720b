package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

type ffprobeResult struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
	BitRate   string `json:"bit_rate"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	FrameRate string `json:"avg_frame_rate"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	BitRate  string `json:"bit_rate"`
}

// runFFprobe inspects the first video stream of path.
func runFFprobe(ctx context.Context, binary, path string) (VideoStream, error) {
	cmd := exec.CommandContext(ctx, binary,
		"-v", "error", "-hide_banner",
		"-show_format", "-show_streams",
		"-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return VideoStream{}, newError(ToolMissing, path, binary, err)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail := strings.TrimSpace(string(exitErr.Stderr))
			return VideoStream{}, newError(ToolFailed, path, binary, fmt.Errorf("%w: %s", err, detail))
		}
		return VideoStream{}, newError(ToolFailed, path, binary, err)
	}

	var result ffprobeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return VideoStream{}, newError(UnparseableOutput, path, binary, err)
	}

	for _, stream := range result.Streams {
		if !strings.EqualFold(stream.CodecType, "video") {
			continue
		}
		video := VideoStream{
			Codec:     stream.CodecName,
			Width:     stream.Width,
			Height:    stream.Height,
			FrameRate: stream.FrameRate,
		}
		if rate, ok := parseInt64(stream.BitRate); ok {
			video.BitRate = &rate
		} else if rate, ok := parseInt64(result.Format.BitRate); ok {
			// Containers like MOV often carry the rate only at format level.
			video.BitRate = &rate
		}
		if dur, ok := parseFloat64(stream.Duration); ok {
			video.Duration = &dur
		} else if dur, ok := parseFloat64(result.Format.Duration); ok {
			video.Duration = &dur
		}
		return video, nil
	}
	return VideoStream{}, newError(UnparseableOutput, path, binary, errors.New("no video stream"))
}

func parseInt64(value string) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" || value == "N/A" {
		return 0, false
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}

func parseFloat64(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" || value == "N/A" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
