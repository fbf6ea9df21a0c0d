package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/database"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/models"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/probe"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/profile"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/repository"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/resource"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/pkg/format"
)

var (
	classifyStore      bool
	classifyOwner      string
	classifyRecording  bool
	classifyComponents int
)

// classifyCmd probes a media file and resolves its delivery profile.
var classifyCmd = &cobra.Command{
	Use:   "classify <path>",
	Short: "Probe a media file and resolve its delivery profile",
	Long: `Probe a media file with ffprobe and resolve the delivery profile its
measurements match. With --store the result is also persisted as a
resource owned by --owner.`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyStore, "store", false, "persist the classified resource")
	classifyCmd.Flags().StringVar(&classifyOwner, "owner", "", "owner id for the stored resource (required with --store)")
	classifyCmd.Flags().BoolVar(&classifyRecording, "recording", false, "treat the file as a broadcast recording (enables the audio-only fallback)")
	classifyCmd.Flags().IntVar(&classifyComponents, "components", 0, "component count reported by the recording's source event")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := cmd.Context()

	if classifyStore {
		return classifyAndStore(cmd, path)
	}

	prober := probe.NewFFprobe(cfg.Probe, logger)
	stream, err := prober.Probe(ctx, probe.FileSource{Path: path})
	if err != nil {
		return fmt.Errorf("probing %s: %w", path, err)
	}

	classifier := profile.NewClassifier(logger)
	var matched *profile.Profile
	if classifyRecording {
		matched = classifier.ClassifyRecording(stream, classifyComponents, profile.ContainerUnknown)
	} else {
		matched = classifier.Classify(stream, profile.ContainerUnknown)
	}
	if matched == nil {
		return fmt.Errorf("%s: %w", path, models.ErrProfileNotFound)
	}

	printStream(cmd, stream)
	cmd.Printf("Profile:       %s\n", matched.Name)
	cmd.Printf("Protocol info: %s\n", matched.ProtocolInfo())
	return nil
}

// classifyAndStore runs the full creation workflow against the configured
// database.
func classifyAndStore(cmd *cobra.Command, path string) error {
	ownerID, err := models.ParseULID(classifyOwner)
	if err != nil {
		return fmt.Errorf("parsing --owner: %w", err)
	}

	db, err := database.New(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	repo := repository.NewResourceRepository(db.DB)
	prober := probe.NewFFprobe(cfg.Probe, logger)
	manager := resource.NewManager(repo, resource.NewCache(), profile.NewClassifier(logger), prober, cfg.Placeholder, logger)
	defer manager.Close()

	var res *models.Resource
	if classifyRecording {
		res, err = manager.CreateFromRecording(cmd.Context(), probe.RecordingSource{
			RecordingID:    ownerID,
			Path:           path,
			ComponentCount: classifyComponents,
		})
	} else {
		res, err = manager.CreateFromFile(cmd.Context(), ownerID, path)
	}
	if err != nil {
		return err
	}

	cmd.Printf("Resource:      %d\n", res.ID)
	cmd.Printf("Owner:         %s\n", res.OwnerID)
	cmd.Printf("Protocol info: %s\n", res.ProtocolInfo)
	if res.SizeBytes > 0 {
		cmd.Printf("Size:          %s\n", format.Bytes(res.SizeBytes))
	}
	if res.DurationText != "" {
		cmd.Printf("Duration:      %s\n", res.DurationText)
	}
	return nil
}

// printStream dumps the probe measurements in human-readable form.
func printStream(cmd *cobra.Command, stream *probe.StreamDescription) {
	cmd.Printf("Container:     %s\n", stream.ContainerKind)
	if stream.HasVideo() {
		cmd.Printf("Video:         %s %s", stream.VideoCodec, format.Resolution(stream.Width, stream.Height))
		if stream.Framerate > 0 {
			cmd.Printf(" @ %gfps", stream.Framerate)
		}
		cmd.Println()
	}
	if stream.HasAudio() {
		cmd.Printf("Audio:         %s %d Hz, %d ch\n", stream.AudioCodec, stream.SampleRateHz, stream.Channels)
	}
	if stream.SystemBitrateBps > 0 {
		cmd.Printf("Bitrate:       %s bps\n", format.Number(stream.SystemBitrateBps))
	}
	if stream.DurationMillis > 0 {
		cmd.Printf("Duration:      %s\n", format.MediaDuration(stream.DurationMillis, false))
	}
	if stream.SizeBytes > 0 {
		cmd.Printf("Size:          %s\n", format.Bytes(stream.SizeBytes))
	}
}
