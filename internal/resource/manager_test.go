package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/config"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/models"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/observability"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/probe"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/profile"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/repository"
)

// fakeProber returns a canned description or error regardless of source.
type fakeProber struct {
	stream *probe.StreamDescription
	err    error
}

func (p *fakeProber) Probe(ctx context.Context, src probe.Source) (*probe.StreamDescription, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.stream, nil
}

var _ probe.Prober = (*fakeProber)(nil)

func hdStream() *probe.StreamDescription {
	return &probe.StreamDescription{
		ContainerKind:    "mpegts",
		VideoCodec:       "h264",
		Width:            1920,
		Height:           1080,
		Framerate:        25,
		ColorDepth:       8,
		AudioCodec:       "aac",
		SampleRateHz:     48000,
		Channels:         2,
		SystemBitrateBps: 11900000,
		DurationMillis:   1800000,
		SizeBytes:        2684354560,
		ComponentCount:   3,
	}
}

func placeholderConfig() config.PlaceholderConfig {
	return config.PlaceholderConfig{
		Path:     "/usr/share/upnpres/confirmation.mpg",
		Size:     config.ByteSize(10 * 1024 * 1024),
		Duration: config.Duration(5_000_000_000),
	}
}

type managerFixture struct {
	manager *Manager
	repo    repository.ResourceRepository
	cache   *Cache
	prober  *fakeProber
}

func setupManager(t *testing.T) *managerFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Resource{}, &models.Sequence{}))
	for _, ns := range models.Namespaces() {
		require.NoError(t, db.Create(&models.Sequence{Namespace: ns, Value: ns.SeedValue()}).Error)
	}

	log := observability.NewLogger(config.LoggingConfig{Level: "error", Format: "text"})
	repo := repository.NewResourceRepository(db)
	cache := NewCache()
	prober := &fakeProber{stream: hdStream()}
	mgr := NewManager(repo, cache, profile.NewClassifier(log), prober, placeholderConfig(), log)

	return &managerFixture{manager: mgr, repo: repo, cache: cache, prober: prober}
}

func TestCreateFromRecording(t *testing.T) {
	f := setupManager(t)
	ctx := context.Background()

	src := probe.RecordingSource{
		RecordingID:    models.NewULID(),
		Path:           "/recordings/news.ts",
		ComponentCount: 3,
	}

	res, err := f.manager.CreateFromRecording(ctx, src)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, uint64(1), res.ID)
	assert.Equal(t, src.RecordingID, res.OwnerID)
	assert.Equal(t, models.ResourceTypeRecording, res.ResourceType)
	assert.Equal(t, "/recordings/news.ts", res.Locator)
	assert.Equal(t, "http-get:*:video/mpeg:DLNA.ORG_PN=AVC_TS_HD_EU_ISO", res.ProtocolInfo)
	assert.Equal(t, "video/mpeg", res.ContentType)
	assert.Equal(t, "1920x1080", res.ResolutionText)
	assert.Equal(t, 8, res.ColorDepth)
	assert.Equal(t, "0:30:00", res.DurationText)
	assert.Equal(t, int64(2684354560), res.SizeBytes)

	// Published to the cache on success.
	assert.True(t, f.cache.Contains(res.ID))
}

func TestCreateFromRecording_HealsAudioOnly(t *testing.T) {
	f := setupManager(t)
	f.prober.stream = &probe.StreamDescription{
		ContainerKind:  "mpegts",
		AudioCodec:     "mp2",
		SampleRateHz:   48000,
		Channels:       2,
		DurationMillis: 3600000,
		SizeBytes:      419430400,
		ComponentCount: 2,
	}

	src := probe.RecordingSource{
		RecordingID:    models.NewULID(),
		Path:           "/recordings/radio.ts",
		ComponentCount: 2,
	}

	res, err := f.manager.CreateFromRecording(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "http-get:*:audio/mpeg:DLNA.ORG_PN=MPEG1_L2_ISO", res.ProtocolInfo)
	assert.Empty(t, res.ResolutionText)
	assert.True(t, res.IsAudioOnly())
}

func TestCreateFromRecording_ProbeFailure(t *testing.T) {
	f := setupManager(t)
	f.prober.err = models.ErrProbeFailed

	src := probe.RecordingSource{RecordingID: models.NewULID(), Path: "/recordings/broken.ts"}
	res, err := f.manager.CreateFromRecording(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrProbeFailed)
	assert.Nil(t, res)

	// Failure leaves both cache and counter untouched.
	assert.Zero(t, f.cache.Len())
	value, err := f.repo.CurrentSequenceValue(context.Background(), models.NamespaceResource)
	require.NoError(t, err)
	assert.Zero(t, value)
}

func TestCreateFromRecording_NoProfile(t *testing.T) {
	f := setupManager(t)
	f.prober.stream = &probe.StreamDescription{
		ContainerKind:  "matroska",
		VideoCodec:     "hevc",
		Width:          3840,
		Height:         2160,
		AudioCodec:     "opus",
		Channels:       6,
		ComponentCount: 4,
	}

	src := probe.RecordingSource{RecordingID: models.NewULID(), Path: "/recordings/uhd.mkv", ComponentCount: 4}
	_, err := f.manager.CreateFromRecording(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrProfileNotFound)
	assert.Zero(t, f.cache.Len())
}

func TestCreateFromChannel(t *testing.T) {
	f := setupManager(t)
	// Live capture: no duration, no size.
	f.prober.stream.DurationMillis = 0
	f.prober.stream.SizeBytes = 0

	src := probe.ChannelSource{
		ChannelID: models.NewULID(),
		URI:       "http://tuner.local/stream/1",
	}

	res, err := f.manager.CreateFromChannel(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, models.ResourceTypeChannel, res.ResourceType)
	assert.Equal(t, src.Locator(), res.Locator)
	assert.Equal(t, models.SizeUnknown, res.SizeBytes)
	assert.Empty(t, res.DurationText)
	assert.Equal(t, "http-get:*:video/mpeg:DLNA.ORG_PN=AVC_TS_HD_EU_ISO", res.ProtocolInfo)
}

func TestCreateFromFile(t *testing.T) {
	f := setupManager(t)
	f.prober.stream = &probe.StreamDescription{
		ContainerKind:  "mov,mp4,m4a,3gp,3g2,mj2",
		VideoCodec:     "h264",
		Width:          720,
		Height:         576,
		Framerate:      25,
		AudioCodec:     "aac",
		SampleRateHz:   44100,
		Channels:       2,
		DurationMillis: 95500,
		SizeBytes:      73400320,
		ComponentCount: 2,
	}

	owner := models.NewULID()
	res, err := f.manager.CreateFromFile(context.Background(), owner, "/media/clip.mp4")
	require.NoError(t, err)

	assert.Equal(t, owner, res.OwnerID)
	assert.Equal(t, models.ResourceTypeFile, res.ResourceType)
	assert.Equal(t, "http-get:*:video/mp4:DLNA.ORG_PN=AVC_MP4_MP_SD_AAC_MULT5", res.ProtocolInfo)
	assert.Equal(t, "0:01:35.500", res.DurationText)
}

func TestCreateIDsAreDistinctAndMonotonic(t *testing.T) {
	f := setupManager(t)
	ctx := context.Background()

	owner := models.NewULID()
	seen := make(map[uint64]bool)
	var last uint64

	for i := 0; i < 4; i++ {
		res, err := f.manager.CreateFromFile(ctx, owner, "/media/clip.ts")
		require.NoError(t, err)
		assert.False(t, seen[res.ID])
		assert.Greater(t, res.ID, last)
		seen[res.ID] = true
		last = res.ID
	}
}

func TestCreateConfirmationPlaceholder(t *testing.T) {
	f := setupManager(t)
	ctx := context.Background()

	owner := models.NewULID()
	res, err := f.manager.CreateConfirmationPlaceholder(ctx, owner, false)
	require.NoError(t, err)

	assert.Equal(t, models.TimerActionPurge, res.RecordTimerAction)
	assert.Equal(t, int64(15000000), res.BitrateBps)
	assert.Equal(t, "720x576", res.ResolutionText)
	assert.Equal(t, 2, res.AudioChannelCount)
	assert.Equal(t, "0:00:05", res.DurationText)
	assert.Equal(t, int64(10*1024*1024), res.SizeBytes)
	assert.Equal(t, "/usr/share/upnpres/confirmation.mpg", res.Locator)
	assert.Equal(t, uint64(1), res.ID)
}

func TestCreateConfirmationPlaceholder_EPGLinked(t *testing.T) {
	f := setupManager(t)

	res, err := f.manager.CreateConfirmationPlaceholder(context.Background(), models.NewULID(), true)
	require.NoError(t, err)

	assert.Equal(t, models.TimerActionTrigger, res.RecordTimerAction)
	assert.Equal(t, models.EPGSequenceBase+1, res.ID)
}

func TestCreateEPGCopy(t *testing.T) {
	f := setupManager(t)
	ctx := context.Background()

	src := probe.RecordingSource{RecordingID: models.NewULID(), Path: "/recordings/news.ts", ComponentCount: 3}
	original, err := f.manager.CreateFromRecording(ctx, src)
	require.NoError(t, err)

	newOwner := models.NewULID()
	copied, err := f.manager.CreateEPGCopy(ctx, newOwner, original.ID)
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, copied.ID)
	assert.Equal(t, models.EPGSequenceBase+1, copied.ID)
	assert.Equal(t, newOwner, copied.OwnerID)
	assert.Equal(t, original.Locator, copied.Locator)
	assert.Equal(t, original.ProtocolInfo, copied.ProtocolInfo)
	assert.Equal(t, original.SizeBytes, copied.SizeBytes)
	assert.Equal(t, original.DurationText, copied.DurationText)
	assert.Equal(t, models.TimerActionTrigger, copied.RecordTimerAction)

	// The source row is untouched.
	reloaded, err := f.repo.GetByID(ctx, original.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, original.OwnerID, reloaded.OwnerID)
}

func TestCreateEPGCopy_MissingSource(t *testing.T) {
	f := setupManager(t)

	_, err := f.manager.CreateEPGCopy(context.Background(), models.NewULID(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrResourceNotFound)
}

func TestGetCacheAside(t *testing.T) {
	f := setupManager(t)
	ctx := context.Background()

	src := probe.RecordingSource{RecordingID: models.NewULID(), Path: "/recordings/news.ts", ComponentCount: 3}
	created, err := f.manager.CreateFromRecording(ctx, src)
	require.NoError(t, err)

	// Drop the cache entry; the next Get repopulates it from the store.
	f.cache.Evict(created.ID)
	assert.False(t, f.cache.Contains(created.ID))

	loaded, err := f.manager.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, created.ID, loaded.ID)
	assert.True(t, f.cache.Contains(created.ID))

	// Round trip preserves every field, including the empty-vs-populated
	// distinction of the text columns.
	assert.Equal(t, created.Locator, loaded.Locator)
	assert.Equal(t, created.ProtocolInfo, loaded.ProtocolInfo)
	assert.Equal(t, created.ContentType, loaded.ContentType)
	assert.Equal(t, created.SizeBytes, loaded.SizeBytes)
	assert.Equal(t, created.DurationText, loaded.DurationText)
	assert.Equal(t, created.BitrateBps, loaded.BitrateBps)
	assert.Equal(t, created.BitsPerSample, loaded.BitsPerSample)
	assert.Equal(t, created.SampleFrequencyHz, loaded.SampleFrequencyHz)
	assert.Equal(t, created.AudioChannelCount, loaded.AudioChannelCount)
	assert.Equal(t, created.ColorDepth, loaded.ColorDepth)
	assert.Equal(t, created.ResolutionText, loaded.ResolutionText)
	assert.Equal(t, created.ResourceType, loaded.ResourceType)
	assert.Equal(t, created.RecordTimerAction, loaded.RecordTimerAction)
}

func TestGetUnknownID(t *testing.T) {
	f := setupManager(t)

	res, err := f.manager.Get(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestDeleteCachedResources(t *testing.T) {
	f := setupManager(t)
	ctx := context.Background()

	owner := models.NewULID()
	first, err := f.manager.CreateFromFile(ctx, owner, "/media/a.ts")
	require.NoError(t, err)
	second, err := f.manager.CreateFromFile(ctx, owner, "/media/b.ts")
	require.NoError(t, err)

	removed := f.manager.DeleteCachedResources(owner)
	assert.Equal(t, 2, removed)
	assert.False(t, f.cache.Contains(first.ID))
	assert.False(t, f.cache.Contains(second.ID))

	// Eviction is not deletion: the rows reload from the store.
	loaded, err := f.manager.Get(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, first.Locator, loaded.Locator)
}

func TestCreateStoreFailureLeavesCacheUntouched(t *testing.T) {
	f := setupManager(t)
	ctx := context.Background()

	// An invalid namespace makes the insert fail before any row lands.
	err := f.repo.Create(ctx, &models.Resource{
		OwnerID:      models.NewULID(),
		ResourceType: models.ResourceTypeFile,
		Locator:      "/media/x.ts",
	}, models.Namespace("bogus"))
	require.Error(t, err)

	var storeErr *models.StoreError
	assert.True(t, errors.As(err, &storeErr))
	assert.Zero(t, f.cache.Len())
}
