package ffmpeg

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

type FFProbeOutput struct {
	Streams []struct {
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// VideoMeta is the probed metadata attached to a submission after upload.
type VideoMeta struct {
	Width      int
	Height     int
	Codec      string
	DurationMS int64
}

// Probe runs ffprobe against a local path or presigned URL.
func Probe(url string) (*VideoMeta, error) {
	cmd := exec.Command("ffprobe",
		"-loglevel", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_name,width,height",
		"-show_entries", "format=duration",
		"-of", "json",
		url,
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffprobe error: %v, output: %s", err, string(out))
	}

	var result FFProbeOutput
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, err
	}

	if len(result.Streams) == 0 {
		return nil, fmt.Errorf("no video stream found")
	}

	meta := &VideoMeta{
		Width:  result.Streams[0].Width,
		Height: result.Streams[0].Height,
		Codec:  result.Streams[0].CodecName,
	}

	if result.Format.Duration != "" {
		if seconds, err := strconv.ParseFloat(result.Format.Duration, 64); err == nil {
			meta.DurationMS = int64(seconds * 1000)
		}
	}

	return meta, nil
}
