package probe

import (
	"encoding/json"
	"testing"

	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hdRecordingJSON = `{
  "format": {
    "format_name": "mpegts",
    "nb_streams": 3,
    "duration": "1800.040000",
    "size": "2684354560",
    "bit_rate": "11930464"
  },
  "streams": [
    {
      "codec_type": "video",
      "codec_name": "h264",
      "width": 1920,
      "height": 1080,
      "avg_frame_rate": "25/1",
      "bits_per_raw_sample": "8",
      "bit_rate": "10000000"
    },
    {
      "codec_type": "audio",
      "codec_name": "aac",
      "sample_rate": "48000",
      "channels": 2,
      "bits_per_sample": 16,
      "bit_rate": "192000"
    },
    {
      "codec_type": "subtitle",
      "codec_name": "dvb_subtitle"
    }
  ]
}`

func TestDescribe_HDRecording(t *testing.T) {
	var result ffprobeOutput
	require.NoError(t, json.Unmarshal([]byte(hdRecordingJSON), &result))

	desc := describe(&result)

	assert.Equal(t, "mpegts", desc.ContainerKind)
	assert.Equal(t, 3, desc.ComponentCount)
	assert.Equal(t, int64(1800040), desc.DurationMillis)
	assert.Equal(t, int64(2684354560), desc.SizeBytes)
	assert.Equal(t, int64(11930464), desc.SystemBitrateBps)

	assert.Equal(t, "h264", desc.VideoCodec)
	assert.Equal(t, 1920, desc.Width)
	assert.Equal(t, 1080, desc.Height)
	assert.InDelta(t, 25.0, desc.Framerate, 0.001)
	assert.Equal(t, int64(10000000), desc.VideoBitrateBps)
	assert.Equal(t, 8, desc.ColorDepth)

	assert.Equal(t, "aac", desc.AudioCodec)
	assert.Equal(t, 48000, desc.SampleRateHz)
	assert.Equal(t, 2, desc.Channels)
	assert.Equal(t, 16, desc.BitsPerSample)

	assert.True(t, desc.HasVideo())
	assert.True(t, desc.HasAudio())
	assert.False(t, desc.Live())
}

func TestDescribe_LiveAudioOnly(t *testing.T) {
	var result ffprobeOutput
	require.NoError(t, json.Unmarshal([]byte(`{
	  "format": {"format_name": "mpegts", "nb_streams": 1},
	  "streams": [
	    {"codec_type": "audio", "codec_name": "mp2", "sample_rate": "48000", "channels": 2}
	  ]
	}`), &result))

	desc := describe(&result)

	assert.False(t, desc.HasVideo())
	assert.True(t, desc.HasAudio())
	assert.True(t, desc.Live())
	assert.Zero(t, desc.SizeBytes)
	assert.Equal(t, 1, desc.ComponentCount)
}

func TestDescribe_FirstStreamsWin(t *testing.T) {
	var result ffprobeOutput
	require.NoError(t, json.Unmarshal([]byte(`{
	  "format": {"format_name": "mpegts"},
	  "streams": [
	    {"codec_type": "audio", "codec_name": "mp2", "sample_rate": "48000", "channels": 2},
	    {"codec_type": "audio", "codec_name": "ac3", "sample_rate": "48000", "channels": 6}
	  ]
	}`), &result))

	desc := describe(&result)
	assert.Equal(t, "mp2", desc.AudioCodec)
	assert.Equal(t, 2, desc.Channels)
	assert.Equal(t, 2, desc.ComponentCount)
}

func TestParseFramerate(t *testing.T) {
	assert.InDelta(t, 25.0, parseFramerate("25/1"), 0.001)
	assert.InDelta(t, 29.97, parseFramerate("30000/1001"), 0.001)
	assert.InDelta(t, 50.0, parseFramerate("50"), 0.001)
	assert.Zero(t, parseFramerate("25/0"))
	assert.Zero(t, parseFramerate("fast"))
}

func TestSourceVariants(t *testing.T) {
	channelID := models.NewULID()

	ch := ChannelSource{ChannelID: channelID, URI: "http://tuner/0", Index: 0}
	assert.Equal(t, SourceChannel, ch.Kind())
	assert.Equal(t, "http://tuner/0", ch.Target())
	assert.Equal(t, channelID.String()+":0", ch.Locator())

	rec := RecordingSource{RecordingID: models.NewULID(), Path: "/srv/rec/001.ts", ComponentCount: 2}
	assert.Equal(t, SourceRecording, rec.Kind())
	assert.Equal(t, "/srv/rec/001.ts", rec.Target())

	file := FileSource{Path: "/media/movie.mp4"}
	assert.Equal(t, SourceFile, file.Kind())
	assert.Equal(t, "/media/movie.mp4", file.Target())
}
