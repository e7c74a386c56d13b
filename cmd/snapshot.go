/*
Copyright © 2025 TaskScout Authors
*/
package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/taskscout/taskscout/internal/telemetry"
	"github.com/taskscout/taskscout/internal/tracker"
	"github.com/taskscout/taskscout/internal/ui"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Import and export work item snapshots",
	Long: `Move work items between snapshot files and the local item store.

Import replaces the store contents with the items and roster from a
snapshot file. Export writes the current store contents to a file.

Examples:
  taskscout snapshot import sprint.json
  taskscout snapshot import backlog.yaml --yes
  taskscout snapshot export backup.json`,
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the local store with a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]
		format, _ := cmd.Flags().GetString("format")
		yes, _ := cmd.Flags().GetBool("yes")

		snap, err := tracker.ReadSnapshotFile(afero.NewOsFs(), path, format)
		if err != nil {
			return err
		}

		storePath := GetStorePath()
		store, err := tracker.OpenStore(storePath)
		if err != nil {
			return fmt.Errorf("failed to open item store at %s: %w", storePath, err)
		}
		defer func() { _ = store.Close() }()

		existing, err := store.FetchItems(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 && !yes {
			prompt := fmt.Sprintf("Replace %d item(s) in %s with %d from %s? [y/N]: ",
				len(existing), storePath, len(snap.Items), path)
			if !confirmOrAbort(prompt) {
				return nil
			}
		}

		if err := store.ImportSnapshot(ctx, snap); err != nil {
			return fmt.Errorf("import snapshot: %w", err)
		}

		effectiveFormat := format
		if effectiveFormat == "" {
			effectiveFormat = strings.TrimPrefix(filepath.Ext(path), ".")
		}
		telemetry.TrackSnapshotImported(len(snap.Items), effectiveFormat)

		if isJSON() {
			return printJSON(map[string]any{
				"imported": len(snap.Items),
				"roster":   len(snap.Roster),
				"store":    storePath,
			})
		}

		fmt.Println(ui.RenderSuccessPanel("Snapshot imported",
			fmt.Sprintf("%d item(s) and %d roster member(s) now in %s", len(snap.Items), len(snap.Roster), storePath)))
		return nil
	},
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the local store to a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]
		format, _ := cmd.Flags().GetString("format")

		storePath := GetStorePath()
		store, err := tracker.OpenStore(storePath)
		if err != nil {
			return fmt.Errorf("failed to open item store at %s: %w", storePath, err)
		}
		defer func() { _ = store.Close() }()

		snap, err := store.ExportSnapshot(ctx)
		if err != nil {
			return err
		}
		if err := tracker.WriteSnapshotFile(afero.NewOsFs(), path, format, snap); err != nil {
			return err
		}

		if isJSON() {
			return printJSON(map[string]any{
				"exported": len(snap.Items),
				"roster":   len(snap.Roster),
				"file":     path,
			})
		}

		if len(snap.Items) == 0 {
			fmt.Println(ui.StyleWarning.Render("The store is empty; wrote an empty snapshot."))
		}
		fmt.Printf("Exported %d item(s) and %d roster member(s) to %s\n", len(snap.Items), len(snap.Roster), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotImportCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)

	snapshotImportCmd.Flags().String("format", "", "Snapshot format: json or yaml (default: by file extension)")
	snapshotImportCmd.Flags().BoolP("yes", "y", false, "Skip the overwrite confirmation")
	snapshotExportCmd.Flags().String("format", "", "Snapshot format: json or yaml (default: by file extension)")
}
