package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/config"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/models"
)

// ffprobeOutput is the subset of ffprobe's JSON output we consume.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	NumStreams int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

type ffprobeStream struct {
	CodecType        string `json:"codec_type"` // video, audio, subtitle, data
	CodecName        string `json:"codec_name"`
	Width            int    `json:"width,omitempty"`
	Height           int    `json:"height,omitempty"`
	AvgFrameRate     string `json:"avg_frame_rate,omitempty"`
	RFrameRate       string `json:"r_frame_rate,omitempty"`
	BitsPerRawSample string `json:"bits_per_raw_sample,omitempty"`
	SampleRate       string `json:"sample_rate,omitempty"`
	Channels         int    `json:"channels,omitempty"`
	BitsPerSample    int    `json:"bits_per_sample,omitempty"`
	BitRate          string `json:"bit_rate,omitempty"`
}

// FFprobe probes media sources by invoking the ffprobe binary.
type FFprobe struct {
	path            string
	timeout         time.Duration
	analyzeDuration time.Duration
	probeSize       int64
	logger          *slog.Logger
}

// NewFFprobe creates a prober from the probe configuration.
func NewFFprobe(cfg config.ProbeConfig, log *slog.Logger) *FFprobe {
	if log == nil {
		log = slog.Default()
	}
	return &FFprobe{
		path:            cfg.FFprobePath,
		timeout:         cfg.Timeout.Duration(),
		analyzeDuration: cfg.AnalyzeDuration.Duration(),
		probeSize:       cfg.ProbeSize.Bytes(),
		logger:          log,
	}
}

// Probe runs ffprobe against the source and returns its stream measurements.
// Any failure wraps models.ErrProbeFailed; no partial description is
// returned.
func (p *FFprobe) Probe(ctx context.Context, src Source) (*StreamDescription, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	target := src.Target()
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
	}
	if p.analyzeDuration > 0 {
		args = append(args, "-analyzeduration", strconv.FormatInt(p.analyzeDuration.Microseconds(), 10))
	}
	if p.probeSize > 0 {
		args = append(args, "-probesize", strconv.FormatInt(p.probeSize, 10))
	}
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		args = append(args,
			"-reconnect", "1",
			"-reconnect_streamed", "1",
			"-timeout", strconv.FormatInt(p.timeout.Microseconds(), 10),
		)
	}
	args = append(args, target)

	cmd := exec.CommandContext(ctx, p.path, args...)
	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: timeout after %v probing %s", models.ErrProbeFailed, p.timeout, src.Kind())
		}
		return nil, fmt.Errorf("%w: ffprobe %s: %v", models.ErrProbeFailed, src.Kind(), err)
	}

	var result ffprobeOutput
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("%w: parsing ffprobe output: %v", models.ErrProbeFailed, err)
	}

	desc := describe(&result)
	p.logger.Debug("probe completed",
		slog.String("kind", string(src.Kind())),
		slog.String("container", desc.ContainerKind),
		slog.String("video_codec", desc.VideoCodec),
		slog.String("audio_codec", desc.AudioCodec),
		slog.Int("components", desc.ComponentCount),
	)
	return desc, nil
}

// describe converts raw ffprobe output into a StreamDescription, taking the
// first video and first audio stream as the measured components.
func describe(result *ffprobeOutput) *StreamDescription {
	desc := &StreamDescription{
		ContainerKind:  result.Format.FormatName,
		ComponentCount: result.Format.NumStreams,
	}
	if desc.ComponentCount == 0 {
		desc.ComponentCount = len(result.Streams)
	}

	if result.Format.Duration != "" {
		if dur, err := strconv.ParseFloat(result.Format.Duration, 64); err == nil {
			desc.DurationMillis = int64(dur * 1000)
		}
	}
	if result.Format.Size != "" {
		if size, err := strconv.ParseInt(result.Format.Size, 10, 64); err == nil {
			desc.SizeBytes = size
		}
	}
	if result.Format.BitRate != "" {
		if br, err := strconv.ParseInt(result.Format.BitRate, 10, 64); err == nil {
			desc.SystemBitrateBps = br
		}
	}

	for _, stream := range result.Streams {
		switch stream.CodecType {
		case "video":
			if desc.VideoCodec != "" {
				continue
			}
			desc.VideoCodec = stream.CodecName
			desc.Width = stream.Width
			desc.Height = stream.Height
			if stream.AvgFrameRate != "" {
				desc.Framerate = parseFramerate(stream.AvgFrameRate)
			}
			if desc.Framerate == 0 && stream.RFrameRate != "" {
				desc.Framerate = parseFramerate(stream.RFrameRate)
			}
			if depth, err := strconv.Atoi(stream.BitsPerRawSample); err == nil {
				desc.ColorDepth = depth
			}
			if br, err := strconv.ParseInt(stream.BitRate, 10, 64); err == nil {
				desc.VideoBitrateBps = br
			}
		case "audio":
			if desc.AudioCodec != "" {
				continue
			}
			desc.AudioCodec = stream.CodecName
			desc.Channels = stream.Channels
			desc.BitsPerSample = stream.BitsPerSample
			if sr, err := strconv.Atoi(stream.SampleRate); err == nil {
				desc.SampleRateHz = sr
			}
			if br, err := strconv.ParseInt(stream.BitRate, 10, 64); err == nil {
				desc.AudioBitrateBps = br
			}
		}
	}

	return desc
}

// parseFramerate parses a framerate string like "30000/1001" or "25/1".
func parseFramerate(fr string) float64 {
	num, den, ok := strings.Cut(fr, "/")
	if !ok {
		if f, err := strconv.ParseFloat(fr, 64); err == nil {
			return f
		}
		return 0
	}

	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// Ensure FFprobe implements Prober at compile time.
var _ Prober = (*FFprobe)(nil)
