package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/database"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/models"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/repository"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/pkg/format"
)

var listOwner string

// resourcesCmd groups resource inspection subcommands.
var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Inspect persisted resources",
}

var resourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List resources for an owner",
	Args:  cobra.NoArgs,
	RunE:  runResourcesList,
}

var resourcesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a resource by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runResourcesShow,
}

func init() {
	resourcesListCmd.Flags().StringVar(&listOwner, "owner", "", "owner id (required)")
	resourcesCmd.AddCommand(resourcesListCmd)
	resourcesCmd.AddCommand(resourcesShowCmd)
	rootCmd.AddCommand(resourcesCmd)
}

func openRepository() (repository.ResourceRepository, func() error, error) {
	db, err := database.New(cfg.Database, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}
	return repository.NewResourceRepository(db.DB), db.Close, nil
}

func runResourcesList(cmd *cobra.Command, _ []string) error {
	ownerID, err := models.ParseULID(listOwner)
	if err != nil {
		return fmt.Errorf("parsing --owner: %w", err)
	}

	repo, closeDB, err := openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	resources, err := repo.GetByOwner(cmd.Context(), ownerID)
	if err != nil {
		return err
	}
	if len(resources) == 0 {
		cmd.Println("no resources")
		return nil
	}

	for _, res := range resources {
		size := "unknown"
		if res.SizeBytes >= 0 {
			size = format.Bytes(res.SizeBytes)
		}
		cmd.Printf("%d\t%s\t%s\t%s\t%s\n", res.ID, res.ResourceType, size, res.DurationText, res.ProtocolInfo)
	}
	return nil
}

func runResourcesShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("parsing resource id: %w", err)
	}

	repo, closeDB, err := openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	res, err := repo.GetByID(cmd.Context(), id)
	if err != nil {
		return err
	}
	if res == nil {
		return fmt.Errorf("resource %d: %w", id, models.ErrResourceNotFound)
	}

	cmd.Printf("ID:             %d\n", res.ID)
	cmd.Printf("Owner:          %s\n", res.OwnerID)
	cmd.Printf("Type:           %s\n", res.ResourceType)
	cmd.Printf("Locator:        %s\n", res.Locator)
	cmd.Printf("Content type:   %s\n", res.ContentType)
	cmd.Printf("Protocol info:  %s\n", res.ProtocolInfo)
	if res.SizeBytes >= 0 {
		cmd.Printf("Size:           %s\n", format.Bytes(res.SizeBytes))
	}
	if res.DurationText != "" {
		cmd.Printf("Duration:       %s\n", res.DurationText)
	}
	if res.BitrateBps > 0 {
		cmd.Printf("Bitrate:        %s bps\n", format.Number(res.BitrateBps))
	}
	if res.ResolutionText != "" {
		cmd.Printf("Resolution:     %s\n", res.ResolutionText)
	}
	if res.AudioChannelCount > 0 {
		cmd.Printf("Audio channels: %d\n", res.AudioChannelCount)
	}
	if res.RecordTimerAction != models.TimerActionNone && res.RecordTimerAction != "" {
		cmd.Printf("Timer action:   %s\n", res.RecordTimerAction)
	}
	return nil
}
