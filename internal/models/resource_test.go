package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validResource() *Resource {
	return &Resource{
		ID:                1,
		OwnerID:           NewULID(),
		ResourceType:      ResourceTypeRecording,
		Locator:           "/srv/video/rec-001",
		ContentType:       "video/mpeg",
		ProtocolInfo:      "http-get:*:video/mpeg:DLNA.ORG_PN=MPEG_TS_SD_EU_ISO",
		SizeBytes:         1024,
		DurationText:      "0:30:00",
		ResolutionText:    "720x576",
		RecordTimerAction: TimerActionNone,
	}
}

func TestResource_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Resource)
		wantErr error
	}{
		{"valid", func(*Resource) {}, nil},
		{"empty locator", func(r *Resource) { r.Locator = "" }, ErrLocatorRequired},
		{"bad type", func(r *Resource) { r.ResourceType = "stream" }, ErrInvalidResourceType},
		{"bad action", func(r *Resource) { r.RecordTimerAction = "delete" }, ErrInvalidTimerAction},
		{"empty resolution ok", func(r *Resource) { r.ResolutionText = "" }, nil},
		{"leading zero width", func(r *Resource) { r.ResolutionText = "0720x576" }, ErrInvalidResolution},
		{"missing separator", func(r *Resource) { r.ResolutionText = "720576" }, ErrInvalidResolution},
		{"non numeric", func(r *Resource) { r.ResolutionText = "720xHD" }, ErrInvalidResolution},
		{"zero only dimension ok", func(r *Resource) { r.ResolutionText = "0x0" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validResource()
			tt.mutate(r)
			err := r.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestResource_IsAudioOnly(t *testing.T) {
	r := validResource()
	assert.False(t, r.IsAudioOnly())

	r.ResolutionText = ""
	assert.True(t, r.IsAudioOnly())
}

func TestNamespace(t *testing.T) {
	assert.True(t, NamespaceResource.Valid())
	assert.True(t, NamespaceResourceEPG.Valid())
	assert.False(t, Namespace("resource-tmp").Valid())
	assert.Len(t, Namespaces(), 2)
}

func TestStoreError(t *testing.T) {
	err := NewStoreError("insert resource", ErrSequenceExhausted)
	assert.Contains(t, err.Error(), "insert resource")
	assert.ErrorIs(t, err, ErrSequenceExhausted)
}

func TestULID_RoundTrip(t *testing.T) {
	id := NewULID()
	assert.False(t, id.IsZero())

	parsed, err := ParseULID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	data, err := json.Marshal(id)
	require.NoError(t, err)

	var back ULID
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, id, back)
}

func TestULID_ScanValue(t *testing.T) {
	id := NewULID()

	v, err := id.Value()
	require.NoError(t, err)

	var scanned ULID
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, id, scanned)

	var zero ULID
	require.NoError(t, zero.Scan(nil))
	assert.True(t, zero.IsZero())

	zv, err := ULID{}.Value()
	require.NoError(t, err)
	assert.Nil(t, zv)
}
