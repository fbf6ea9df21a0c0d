package profile

import (
	"log/slog"
	"strings"

	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/probe"
)

// healingComponentThreshold is the component count below which a broadcast
// recording without a matching rule is treated as audio-only content.
const healingComponentThreshold = 3

// Classifier maps stream measurements to delivery profiles.
type Classifier struct {
	logger *slog.Logger
}

// NewClassifier creates a classifier.
func NewClassifier(log *slog.Logger) *Classifier {
	if log == nil {
		log = slog.Default()
	}
	return &Classifier{logger: log}
}

// Classify resolves a delivery profile for the given stream measurements.
// When hint is ContainerUnknown the container is detected first; otherwise
// the hint is authoritative. Returns nil when no rule matches or when the
// stream carries neither usable video nor usable audio. A nil result means
// "ineligible for delivery", not an error.
func (c *Classifier) Classify(stream *probe.StreamDescription, hint Container) *Profile {
	if stream == nil || (!stream.HasVideo() && !stream.HasAudio()) {
		return nil
	}

	container := hint
	if container == ContainerUnknown {
		container = DetectContainer(stream)
		if container == ContainerUnknown {
			c.logger.Debug("container detection failed",
				slog.String("container_kind", stream.ContainerKind))
			return nil
		}
	}

	video := resolveVideo(container, stream)
	audio := resolveAudio(container, stream)

	matched := Lookup(container, video, audio)
	if matched == nil {
		c.logger.Debug("no delivery profile for stream",
			slog.String("container", string(container)),
			slog.String("video", string(video)),
			slog.String("audio", string(audio)),
		)
		return nil
	}

	c.logger.Debug("delivery profile resolved",
		slog.String("container", string(container)),
		slog.String("video", string(video)),
		slog.String("audio", string(audio)),
		slog.String("profile", matched.Name),
	)
	return matched
}

// ClassifyRecording classifies a broadcast recording, applying the healing
// fallback: when no rule matches and the source event reports fewer
// components than the threshold, the recording is evidently audio-only
// content and receives the minimal audio profile instead of being rejected.
// The fallback never applies to live channels or arbitrary files.
func (c *Classifier) ClassifyRecording(stream *probe.StreamDescription, componentCount int, hint Container) *Profile {
	if matched := c.Classify(stream, hint); matched != nil {
		return matched
	}

	if stream == nil || !stream.HasAudio() {
		return nil
	}
	if componentCount <= 0 {
		componentCount = stream.ComponentCount
	}
	if componentCount >= healingComponentThreshold {
		return nil
	}

	healed := HealingProfile()
	c.logger.Info("healing audio-only recording",
		slog.Int("components", componentCount),
		slog.String("profile", healed.Name),
	)
	return &healed
}

// DetectContainer determines the container profile from container-specific
// markers in the probe output. Detection is a pure function of the
// description, so repeated calls for one classification agree; the
// classifier still captures the first result as authoritative for the call.
func DetectContainer(stream *probe.StreamDescription) Container {
	kind := strings.ToLower(strings.TrimSpace(stream.ContainerKind))
	switch {
	case kind == "":
		return ContainerUnknown
	case strings.Contains(kind, "mpegts"):
		return ContainerMPEG2TSISO
	case kind == "3gp" || kind == "3gpp":
		return Container3GPP
	case strings.Contains(kind, "mp4") || strings.Contains(kind, "mov"):
		return ContainerMP4
	case kind == "mp3":
		return ContainerMP3
	case kind == "mpeg" || kind == "vob" || strings.Contains(kind, "mpegps"):
		// MPEG1 system streams report the same demuxer name as program
		// streams; the video codec tells them apart.
		if normalizeVideoCodec(stream.VideoCodec) == "mpeg1" {
			return ContainerMPEG1
		}
		return ContainerMPEG2PS
	case kind == "mpegvideo" || kind == "mpeg1video":
		return ContainerMPEG1
	default:
		return ContainerUnknown
	}
}

// resolveVideo determines the video-portion profile from codec id,
// resolution/framerate set membership, and system bitrate range membership.
func resolveVideo(container Container, stream *probe.StreamDescription) VideoPortion {
	if !stream.HasVideo() {
		return VideoNone
	}

	dim := dimensions{stream.Width, stream.Height}

	switch normalizeVideoCodec(stream.VideoCodec) {
	case "mpeg1":
		if dim == (dimensions{352, 288}) && framerateIn(stream.Framerate, 25) &&
			bitrateWithin(stream.SystemBitrateBps, maxMPEG1SystemBitrate) {
			return VideoMPEG1V
		}
	case "mpeg2":
		if palSDResolutions[dim] && framerateIn(stream.Framerate, 25) &&
			bitrateWithin(stream.SystemBitrateBps, maxSDSystemBitrate) {
			return VideoMPEG2PAL
		}
		if hdResolutions[dim] && framerateIn(stream.Framerate, 25, 50) &&
			bitrateWithin(stream.SystemBitrateBps, maxHDSystemBitrate) {
			return VideoMPEG2PALHD
		}
	case "h264":
		if hdResolutions[dim] && framerateIn(stream.Framerate, 25, 50) &&
			bitrateWithin(stream.SystemBitrateBps, maxHDSystemBitrate) {
			return VideoMPEG2PALHD
		}
		// Standard definition H.264 is only deliverable from ISO
		// containers.
		if (container == ContainerMP4 || container == Container3GPP) &&
			stream.Width <= 720 && stream.Height <= 576 {
			return VideoAVC
		}
	case "mpeg4":
		if container == ContainerMP4 && stream.Width <= 720 && stream.Height <= 576 {
			return VideoMPEG4P2
		}
	}

	return VideoNone
}

// resolveAudio determines the audio-portion profile from codec id,
// sample-rate/channel-layout membership, and the container family.
// Broadcast system streams carry their audio in MPEG1 layer 2 framing
// regardless of the codec identifier the probe reports.
func resolveAudio(container Container, stream *probe.StreamDescription) AudioPortion {
	if !stream.HasAudio() {
		return AudioNone
	}

	codec := normalizeAudioCodec(stream.AudioCodec)

	switch container {
	case ContainerMPEG2TSISO, ContainerMPEG2TS, ContainerMPEG2PS, ContainerMPEG1:
		switch codec {
		case "ac3", "eac3":
			if stream.Channels <= 6 {
				return AudioAC3
			}
		case "mp2", "mp3", "aac":
			if broadcastSampleRates[stream.SampleRateHz] && stream.Channels <= 2 {
				return AudioMPEG1L2
			}
		}
	case ContainerMP4, Container3GPP:
		switch codec {
		case "aac":
			if stream.SampleRateHz <= 48000 && stream.Channels <= 6 {
				return AudioAAC
			}
		case "lpcm":
			if stream.Channels <= 2 {
				return AudioLPCM
			}
		}
	case ContainerMP3:
		if codec == "mp3" || codec == "mp2" {
			return AudioMPEG1L3
		}
	}

	return AudioNone
}

// framerateIn reports whether the measured framerate matches one of the
// accepted rates. Zero means unmeasured and is accepted.
func framerateIn(measured float64, accepted ...float64) bool {
	if measured == 0 {
		return true
	}
	for _, rate := range accepted {
		if measured > rate-0.5 && measured < rate+0.5 {
			return true
		}
	}
	return false
}

// bitrateWithin reports whether the measured system bitrate fits the
// ceiling. Zero means unmeasured and is accepted.
func bitrateWithin(measured int64, ceiling int64) bool {
	return measured == 0 || measured <= ceiling
}
