package models

import (
	"strings"
	"time"
)

// ResourceType identifies the kind of media a resource points at.
type ResourceType string

// Resource type constants.
const (
	ResourceTypeChannel   ResourceType = "channel"
	ResourceTypeRecording ResourceType = "recording"
	ResourceTypeFile      ResourceType = "file"
)

// RecordTimerAction is the follow-up action attached to a resource when the
// host application confirms or discards a pending recording.
type RecordTimerAction string

// Record timer action constants.
const (
	TimerActionNone    RecordTimerAction = "none"
	TimerActionTrigger RecordTimerAction = "trigger-recording"
	TimerActionPurge   RecordTimerAction = "purge-recording"
)

// SizeUnknown marks the size of unbounded media such as live channels.
const SizeUnknown int64 = -1

// Resource is a deliverable media item owned by a catalog object. Its id is
// assigned exactly once from a sequence namespace inside the insert
// transaction and is immutable afterwards. Cache membership is tracked by
// the cache itself, never on the entity.
type Resource struct {
	ID      uint64 `gorm:"primarykey;autoIncrement:false" json:"id"`
	OwnerID ULID   `gorm:"type:varchar(26);index" json:"owner_id"`

	ResourceType ResourceType `gorm:"size:16" json:"resource_type"`

	// Locator identifies the underlying media: a file path, a
	// channel+index pair, or the confirmation placeholder path.
	Locator      string `gorm:"size:512" json:"locator"`
	ContentType  string `gorm:"size:64" json:"content_type"`
	ProtocolInfo string `gorm:"size:256" json:"protocol_info"`

	// SizeBytes is SizeUnknown for live channels.
	SizeBytes int64 `json:"size_bytes"`

	// DurationText has the form "H:MM:SS[.mmm]", or is empty for live or
	// unbounded media.
	DurationText string `gorm:"size:16" json:"duration_text"`

	BitrateBps        int64 `json:"bitrate_bps"`
	BitsPerSample     int   `json:"bits_per_sample"`
	SampleFrequencyHz int   `json:"sample_frequency_hz"`
	AudioChannelCount int   `json:"audio_channel_count"`
	ColorDepth        int   `json:"color_depth"`

	// ResolutionText has the form "WxH" with no leading zeros, or is
	// empty for audio-only media.
	ResolutionText string `gorm:"size:16" json:"resolution_text"`

	RecordTimerAction RecordTimerAction `gorm:"size:24" json:"record_timer_action"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for resources.
func (Resource) TableName() string {
	return "resources"
}

// Validate checks the resource fields for consistency.
func (r *Resource) Validate() error {
	if r.Locator == "" {
		return ErrLocatorRequired
	}

	switch r.ResourceType {
	case ResourceTypeChannel, ResourceTypeRecording, ResourceTypeFile:
	default:
		return ErrInvalidResourceType
	}

	switch r.RecordTimerAction {
	case TimerActionNone, TimerActionTrigger, TimerActionPurge:
	default:
		return ErrInvalidTimerAction
	}

	if r.ResolutionText != "" && !validResolution(r.ResolutionText) {
		return ErrInvalidResolution
	}

	return nil
}

// IsAudioOnly reports whether the resource carries no video portion.
func (r *Resource) IsAudioOnly() bool {
	return r.ResolutionText == ""
}

// validResolution checks the "<width>x<height>" shape with no leading zeros.
func validResolution(s string) bool {
	w, h, ok := strings.Cut(s, "x")
	return ok && validDimension(w) && validDimension(h)
}

func validDimension(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
