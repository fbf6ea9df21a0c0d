// Package profile provides the delivery-profile catalog and classifier.
// It maps raw stream measurements to named delivery profiles the way a
// client device advertises them: a (container, video, audio) portion triple
// looked up in a static rule table.
package profile

import "strings"

// Container is the container-profile classification axis.
type Container string

// Container profile constants.
const (
	ContainerUnknown    Container = ""
	ContainerMPEG1      Container = "MPEG1"
	ContainerMPEG2PS    Container = "MPEG2-PS"
	ContainerMPEG2TS    Container = "MPEG2-TS"
	ContainerMPEG2TSISO Container = "MPEG2-TS-ISO"
	ContainerMP4        Container = "MP4"
	Container3GPP       Container = "3GPP"
	// ContainerMP3 covers bare MPEG audio elementary streams so plain
	// audio files classify without a system-stream wrapper.
	ContainerMP3 Container = "MP3"
)

// VideoPortion is the video-portion classification axis.
type VideoPortion string

// Video portion constants.
const (
	VideoNone       VideoPortion = ""
	VideoMPEG1V     VideoPortion = "MPEG1-VIDEO"
	VideoMPEG2PAL   VideoPortion = "MPEG2-PAL"
	VideoMPEG2PALHD VideoPortion = "MPEG2-PAL-HD"
	VideoAVC        VideoPortion = "AVC"
	VideoMPEG4P2    VideoPortion = "MPEG4-P2"
)

// AudioPortion is the audio-portion classification axis.
type AudioPortion string

// Audio portion constants.
const (
	AudioNone    AudioPortion = ""
	AudioMPEG1L2 AudioPortion = "MPEG1-L2"
	AudioMPEG1L3 AudioPortion = "MPEG1-L3"
	AudioAAC     AudioPortion = "AAC"
	AudioAC3     AudioPortion = "AC3"
	AudioLPCM    AudioPortion = "LPCM"
)

// Profile is a named delivery profile with its MIME type.
type Profile struct {
	Name string
	MIME string
}

// ProtocolInfo returns the delivery-protocol descriptor string produced by
// substituting the profile into the fixed template. The result is opaque to
// the core and handed unmodified to external serialization.
func (p Profile) ProtocolInfo() string {
	return "http-get:*:" + p.MIME + ":DLNA.ORG_PN=" + p.Name
}

// rule maps an exact (container, video, audio) triple to a profile.
type rule struct {
	container Container
	video     VideoPortion
	audio     AudioPortion
	profile   Profile
}

// rules is the delivery-profile table. Lookup is exact-match in declaration
// order; the first matching row wins. Rows are constructed to be
// non-overlapping, but the order is still the contract.
var rules = []rule{
	// ISO MPEG transport streams (broadcast, no delivery timestamps)
	{ContainerMPEG2TSISO, VideoMPEG2PAL, AudioMPEG1L2, Profile{"MPEG_TS_SD_EU_ISO", "video/mpeg"}},
	{ContainerMPEG2TSISO, VideoMPEG2PAL, AudioAC3, Profile{"MPEG_TS_SD_EU_ISO", "video/mpeg"}},
	{ContainerMPEG2TSISO, VideoMPEG2PALHD, AudioMPEG1L2, Profile{"AVC_TS_HD_EU_ISO", "video/mpeg"}},
	{ContainerMPEG2TSISO, VideoMPEG2PALHD, AudioAC3, Profile{"AVC_TS_HD_EU_ISO", "video/mpeg"}},

	// Timestamped MPEG transport streams
	{ContainerMPEG2TS, VideoMPEG2PAL, AudioMPEG1L2, Profile{"MPEG_TS_SD_EU", "video/vnd.dlna.mpeg-tts"}},
	{ContainerMPEG2TS, VideoMPEG2PALHD, AudioMPEG1L2, Profile{"AVC_TS_HD_EU", "video/vnd.dlna.mpeg-tts"}},

	// MPEG program streams
	{ContainerMPEG2PS, VideoMPEG2PAL, AudioMPEG1L2, Profile{"MPEG_PS_PAL", "video/mpeg"}},
	{ContainerMPEG2PS, VideoMPEG2PAL, AudioAC3, Profile{"MPEG_PS_PAL_XAC3", "video/mpeg"}},

	// MPEG1 system streams
	{ContainerMPEG1, VideoMPEG1V, AudioMPEG1L2, Profile{"MPEG1", "video/mpeg"}},

	// ISO MP4
	{ContainerMP4, VideoAVC, AudioAAC, Profile{"AVC_MP4_MP_SD_AAC_MULT5", "video/mp4"}},
	{ContainerMP4, VideoAVC, AudioLPCM, Profile{"AVC_MP4_LPCM", "video/mp4"}},
	{ContainerMP4, VideoMPEG4P2, AudioAAC, Profile{"MPEG4_P2_MP4_SP_AAC", "video/mp4"}},

	// 3GPP mobile
	{Container3GPP, VideoAVC, AudioAAC, Profile{"AVC_3GPP_BL_QCIF15_AAC", "video/3gpp"}},

	// Audio-only
	{ContainerMP3, VideoNone, AudioMPEG1L3, Profile{"MP3", "audio/mpeg"}},
	{ContainerMP4, VideoNone, AudioAAC, Profile{"AAC_ISO_320", "audio/mp4"}},
}

// healingProfile is the minimal audio-only profile assigned to broadcast
// recordings that evidently carry no usable video profile.
var healingProfile = Profile{Name: "MPEG1_L2_ISO", MIME: "audio/mpeg"}

// Lookup resolves a (container, video, audio) triple against the rule
// table. Returns nil when no rule matches.
func Lookup(c Container, v VideoPortion, a AudioPortion) *Profile {
	for i := range rules {
		r := &rules[i]
		if r.container == c && r.video == v && r.audio == a {
			p := r.profile
			return &p
		}
	}
	return nil
}

// HealingProfile returns the audio-only fallback profile for broadcast
// recordings.
func HealingProfile() Profile {
	return healingProfile
}

// dimensions is a width/height pair used in resolution acceptance sets.
type dimensions struct {
	w, h int
}

// palSDResolutions are the PAL standard-definition frame sizes.
var palSDResolutions = map[dimensions]bool{
	{720, 576}: true,
	{704, 576}: true,
	{544, 576}: true,
	{480, 576}: true,
	{352, 576}: true,
	{352, 288}: true,
}

// hdResolutions are the broadcast high-definition frame sizes.
var hdResolutions = map[dimensions]bool{
	{1920, 1080}: true,
	{1440, 1080}: true,
	{1280, 720}:  true,
}

// System bitrate ceilings per video portion, in bits per second.
// A zero measured bitrate means unknown and is accepted.
const (
	maxMPEG1SystemBitrate = 1_856_000
	maxSDSystemBitrate    = 15_000_000
	maxHDSystemBitrate    = 30_000_000
)

// broadcastSampleRates are the sample rates permitted for MPEG1 layer 2
// broadcast audio.
var broadcastSampleRates = map[int]bool{
	32000: true,
	44100: true,
	48000: true,
}

// videoAliases normalizes probe codec identifiers to canonical names.
var videoAliases = map[string]string{
	"h264":       "h264",
	"avc":        "h264",
	"avc1":       "h264",
	"h.264":      "h264",
	"mpeg2":      "mpeg2",
	"mpeg2video": "mpeg2",
	"mpeg1":      "mpeg1",
	"mpeg1video": "mpeg1",
	"mpeg4":      "mpeg4",
	"msmpeg4v2":  "mpeg4",
}

// audioAliases normalizes probe codec identifiers to canonical names.
var audioAliases = map[string]string{
	"mp2":      "mp2",
	"mp2float": "mp2",
	"mp3":      "mp3",
	"mp3float": "mp3",
	"aac":      "aac",
	"aac_latm": "aac",
	"mp4a":     "aac",
	"ac3":      "ac3",
	"ac-3":     "ac3",
	"eac3":     "eac3",
	"ec-3":     "eac3",
}

// normalizeVideoCodec maps a probe video codec id to its canonical name,
// or "" when unrecognized.
func normalizeVideoCodec(id string) string {
	return videoAliases[strings.ToLower(strings.TrimSpace(id))]
}

// normalizeAudioCodec maps a probe audio codec id to its canonical name.
// PCM variants collapse to "lpcm"; unrecognized ids map to "".
func normalizeAudioCodec(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if strings.HasPrefix(id, "pcm_") || id == "pcm" {
		return "lpcm"
	}
	return audioAliases[id]
}
