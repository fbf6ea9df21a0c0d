// Package probe defines the media probe boundary: a collaborator inspects a
// channel, recording, or file and returns raw stream measurements. A failure
// means "no profile can be assigned"; a partial description is never
// returned.
package probe

import (
	"context"
	"fmt"

	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/models"
)

// SourceKind discriminates the probe source variants.
type SourceKind string

// Source kind constants.
const (
	SourceChannel   SourceKind = "channel"
	SourceRecording SourceKind = "recording"
	SourceFile      SourceKind = "file"
)

// Source is a probeable media origin. Implementations form a closed set:
// ChannelSource, RecordingSource, FileSource.
type Source interface {
	Kind() SourceKind
	// Target returns the URI or path handed to the probe binary.
	Target() string
}

// ChannelSource probes a live broadcast channel.
type ChannelSource struct {
	ChannelID models.ULID
	URI       string
	// Index disambiguates multiple resources per channel (multiple tuner
	// cards). Declared as an extension point; construction currently
	// always uses index 0.
	Index int
}

// Kind returns SourceChannel.
func (s ChannelSource) Kind() SourceKind { return SourceChannel }

// Target returns the channel stream URI.
func (s ChannelSource) Target() string { return s.URI }

// Locator returns the channel+index pair recorded on the resource.
func (s ChannelSource) Locator() string {
	return fmt.Sprintf("%s:%d", s.ChannelID, s.Index)
}

// RecordingSource probes a finished or in-progress broadcast recording.
type RecordingSource struct {
	RecordingID models.ULID
	Path        string
	// ComponentCount is the stream component count reported by the
	// recording's source event. Zero means unreported; the probed count
	// is used instead.
	ComponentCount int
}

// Kind returns SourceRecording.
func (s RecordingSource) Kind() SourceKind { return SourceRecording }

// Target returns the recording path.
func (s RecordingSource) Target() string { return s.Path }

// FileSource probes an arbitrary media file.
type FileSource struct {
	Path string
}

// Kind returns SourceFile.
func (s FileSource) Kind() SourceKind { return SourceFile }

// Target returns the file path.
func (s FileSource) Target() string { return s.Path }

// StreamDescription holds per-stream measurements from one probe call.
// It is produced once per classification call and read-only afterwards.
type StreamDescription struct {
	// ContainerKind is the raw container format name as reported by the
	// probe, e.g. "mpegts" or "mov,mp4,m4a,3gp,3g2,mj2".
	ContainerKind string

	VideoCodec      string
	Width           int
	Height          int
	Framerate       float64
	VideoBitrateBps int64
	// ColorDepth is the video bit depth per component; zero when the
	// probe does not report one.
	ColorDepth int

	AudioCodec        string
	SampleRateHz      int
	Channels          int
	BitsPerSample     int
	AudioBitrateBps   int64

	// SystemBitrateBps is the overall container bitrate; zero when the
	// probe could not measure it.
	SystemBitrateBps int64

	// DurationMillis is zero for live or unbounded media.
	DurationMillis int64

	// SizeBytes is zero when unknown (live channels).
	SizeBytes int64

	// ComponentCount is the number of elementary streams in the container.
	ComponentCount int
}

// HasVideo reports whether a usable video stream was measured.
func (s *StreamDescription) HasVideo() bool {
	return s.VideoCodec != "" && s.Width > 0 && s.Height > 0
}

// HasAudio reports whether a usable audio stream was measured.
func (s *StreamDescription) HasAudio() bool {
	return s.AudioCodec != "" && s.Channels > 0
}

// Live reports whether the media is unbounded.
func (s *StreamDescription) Live() bool {
	return s.DurationMillis == 0
}

// Prober inspects a source and returns its stream measurements.
type Prober interface {
	Probe(ctx context.Context, src Source) (*StreamDescription, error)
}
