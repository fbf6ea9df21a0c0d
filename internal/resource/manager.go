package resource

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/config"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/models"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/observability"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/probe"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/profile"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/repository"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/pkg/format"
)

// Synthetic confirmation placeholder advertisement values. Clients need a
// plausible-looking media item to render while the host application waits
// for the user's decision.
const (
	placeholderBitrateBps = 15000000
	placeholderResolution = "720x576"
	placeholderChannels   = 2
	placeholderMIME       = "video/mpeg"
)

// Manager orchestrates the resource creation workflows and the cache-aside
// read path. It owns no global state; construct one per store connection and
// pass it by reference.
type Manager struct {
	repo        repository.ResourceRepository
	cache       *Cache
	classifier  *profile.Classifier
	prober      probe.Prober
	placeholder config.PlaceholderConfig
	logger      *slog.Logger
}

// NewManager creates a resource manager.
func NewManager(repo repository.ResourceRepository, cache *Cache, classifier *profile.Classifier, prober probe.Prober, placeholder config.PlaceholderConfig, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		repo:        repo,
		cache:       cache,
		classifier:  classifier,
		prober:      prober,
		placeholder: placeholder,
		logger:      observability.WithComponent(log, "resource-manager"),
	}
}

// CreateFromRecording probes a broadcast recording, resolves its delivery
// profile with the audio-only healing fallback, and persists the resource.
func (m *Manager) CreateFromRecording(ctx context.Context, src probe.RecordingSource) (*models.Resource, error) {
	log := m.workflowLogger("create-from-recording",
		slog.String("recording_id", src.RecordingID.String()),
		slog.String("path", src.Path),
	)

	stream, err := m.prober.Probe(ctx, src)
	if err != nil {
		observability.WithError(log, err).Error("probing recording failed")
		return nil, fmt.Errorf("probing recording %s: %w", src.RecordingID, err)
	}

	matched := m.classifier.ClassifyRecording(stream, src.ComponentCount, profile.ContainerUnknown)
	if matched == nil {
		log.Warn("recording has no delivery profile")
		return nil, fmt.Errorf("recording %s: %w", src.RecordingID, models.ErrProfileNotFound)
	}

	resource := m.buildFromStream(src.RecordingID, models.ResourceTypeRecording, src.Path, matched, stream)
	if err := m.persist(ctx, log, resource, models.NamespaceResource); err != nil {
		return nil, err
	}
	return resource, nil
}

// CreateFromChannel probes a live channel and persists the resource. Live
// media advertises an unknown size and no duration.
func (m *Manager) CreateFromChannel(ctx context.Context, src probe.ChannelSource) (*models.Resource, error) {
	log := m.workflowLogger("create-from-channel",
		slog.String("channel_id", src.ChannelID.String()),
		slog.Int("index", src.Index),
	)

	stream, err := m.prober.Probe(ctx, src)
	if err != nil {
		observability.WithError(log, err).Error("probing channel failed")
		return nil, fmt.Errorf("probing channel %s: %w", src.ChannelID, err)
	}

	matched := m.classifier.Classify(stream, profile.ContainerUnknown)
	if matched == nil {
		log.Warn("channel has no delivery profile")
		return nil, fmt.Errorf("channel %s: %w", src.ChannelID, models.ErrProfileNotFound)
	}

	resource := m.buildFromStream(src.ChannelID, models.ResourceTypeChannel, src.Locator(), matched, stream)
	resource.SizeBytes = models.SizeUnknown
	resource.DurationText = ""

	if err := m.persist(ctx, log, resource, models.NamespaceResource); err != nil {
		return nil, err
	}
	return resource, nil
}

// CreateFromFile probes an arbitrary media file owned by ownerID and
// persists the resource.
func (m *Manager) CreateFromFile(ctx context.Context, ownerID models.ULID, path string) (*models.Resource, error) {
	log := m.workflowLogger("create-from-file",
		slog.String("owner_id", ownerID.String()),
		slog.String("path", path),
	)

	src := probe.FileSource{Path: path}
	stream, err := m.prober.Probe(ctx, src)
	if err != nil {
		observability.WithError(log, err).Error("probing file failed")
		return nil, fmt.Errorf("probing file %s: %w", path, err)
	}

	matched := m.classifier.Classify(stream, profile.ContainerUnknown)
	if matched == nil {
		log.Warn("file has no delivery profile")
		return nil, fmt.Errorf("file %s: %w", path, models.ErrProfileNotFound)
	}

	resource := m.buildFromStream(ownerID, models.ResourceTypeFile, path, matched, stream)
	if err := m.persist(ctx, log, resource, models.NamespaceResource); err != nil {
		return nil, err
	}
	return resource, nil
}

// CreateConfirmationPlaceholder creates the synthetic resource shown while a
// recording awaits user confirmation. No probing happens; the advertised
// values are fixed. EPG-linked placeholders allocate from the EPG namespace
// and arm the trigger action; plain ones arm the purge action.
func (m *Manager) CreateConfirmationPlaceholder(ctx context.Context, ownerID models.ULID, epgLinked bool) (*models.Resource, error) {
	log := m.workflowLogger("create-placeholder",
		slog.String("owner_id", ownerID.String()),
		slog.Bool("epg_linked", epgLinked),
	)

	action := models.TimerActionPurge
	ns := models.NamespaceResource
	if epgLinked {
		action = models.TimerActionTrigger
		ns = models.NamespaceResourceEPG
	}

	pal := profile.Lookup(profile.ContainerMPEG2PS, profile.VideoMPEG2PAL, profile.AudioMPEG1L2)
	if pal == nil {
		return nil, models.ErrProfileNotFound
	}

	resource := &models.Resource{
		OwnerID:           ownerID,
		ResourceType:      models.ResourceTypeFile,
		Locator:           m.placeholder.Path,
		ContentType:       placeholderMIME,
		ProtocolInfo:      pal.ProtocolInfo(),
		SizeBytes:         m.placeholder.Size.Bytes(),
		DurationText:      format.MediaDuration(m.placeholder.Duration.Duration().Milliseconds(), false),
		BitrateBps:        placeholderBitrateBps,
		AudioChannelCount: placeholderChannels,
		ResolutionText:    placeholderResolution,
		RecordTimerAction: action,
	}

	if err := m.persist(ctx, log, resource, ns); err != nil {
		return nil, err
	}
	return resource, nil
}

// CreateEPGCopy creates a new resource for newOwnerID by duplicating the
// media fields of an existing resource. The copy gets its own id from the
// EPG namespace; the source row is untouched.
func (m *Manager) CreateEPGCopy(ctx context.Context, newOwnerID models.ULID, sourceID uint64) (*models.Resource, error) {
	log := m.workflowLogger("create-epg-copy",
		slog.String("owner_id", newOwnerID.String()),
		slog.Uint64("source_id", sourceID),
	)

	source, err := m.Get(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		log.Warn("copy source does not exist")
		return nil, fmt.Errorf("resource %d: %w", sourceID, models.ErrResourceNotFound)
	}

	duplicate := *source
	duplicate.ID = 0
	duplicate.OwnerID = newOwnerID
	duplicate.RecordTimerAction = models.TimerActionTrigger
	duplicate.CreatedAt = time.Time{}
	duplicate.UpdatedAt = time.Time{}

	if err := m.persist(ctx, log, &duplicate, models.NamespaceResourceEPG); err != nil {
		return nil, err
	}
	return &duplicate, nil
}

// Get returns the resource for id, consulting the cache first and loading
// from the store on a miss. Returns (nil, nil) when no row exists.
func (m *Manager) Get(ctx context.Context, id uint64) (*models.Resource, error) {
	if cached := m.cache.Get(id); cached != nil {
		return cached, nil
	}

	loaded, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return nil, nil
	}

	m.cache.Put(loaded)
	return loaded, nil
}

// Close releases the manager's in-memory state. The store connection is
// owned by the caller and closed separately.
func (m *Manager) Close() {
	m.cache.Clear()
}

// DeleteCachedResources evicts every cached resource belonging to ownerID.
// The backing rows remain and can still be loaded by id.
func (m *Manager) DeleteCachedResources(ownerID models.ULID) int {
	removed := m.cache.EvictOwner(ownerID)
	m.logger.Debug("evicted cached resources",
		slog.String("owner_id", ownerID.String()),
		slog.Int("removed", removed),
	)
	return removed
}

// persist validates and inserts the resource, then publishes it to the
// cache. On failure the cache is untouched.
func (m *Manager) persist(ctx context.Context, log *slog.Logger, resource *models.Resource, ns models.Namespace) error {
	if err := m.repo.Create(ctx, resource, ns); err != nil {
		observability.WithError(log, err).Error("persisting resource failed")
		return err
	}

	m.cache.Put(resource)
	log.Info("resource created",
		slog.Uint64("resource_id", resource.ID),
		slog.String("protocol_info", resource.ProtocolInfo),
	)
	return nil
}

// buildFromStream assembles a resource from probe measurements and the
// matched profile. Durations carry a millisecond fraction only when the
// measurement has one.
func (m *Manager) buildFromStream(ownerID models.ULID, rt models.ResourceType, locator string, matched *profile.Profile, stream *probe.StreamDescription) *models.Resource {
	withMillis := stream.DurationMillis%1000 != 0

	return &models.Resource{
		OwnerID:           ownerID,
		ResourceType:      rt,
		Locator:           locator,
		ContentType:       matched.MIME,
		ProtocolInfo:      matched.ProtocolInfo(),
		SizeBytes:         stream.SizeBytes,
		DurationText:      format.MediaDuration(stream.DurationMillis, withMillis),
		BitrateBps:        stream.SystemBitrateBps,
		ColorDepth:        stream.ColorDepth,
		BitsPerSample:     stream.BitsPerSample,
		SampleFrequencyHz: stream.SampleRateHz,
		AudioChannelCount: stream.Channels,
		ResolutionText:    format.Resolution(stream.Width, stream.Height),
		RecordTimerAction: models.TimerActionNone,
	}
}

// workflowLogger attaches a correlation id and the workflow name to the
// manager's logger.
func (m *Manager) workflowLogger(op string, attrs ...any) *slog.Logger {
	log := observability.WithOperation(m.logger, op).With(
		slog.String("correlation_id", uuid.NewString()),
	)
	return log.With(attrs...)
}
