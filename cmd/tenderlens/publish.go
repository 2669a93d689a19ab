// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avoynikov/tenderlens/internal/publish"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Drain the workspace publish queue or inspect it",
	Long: `Publish processes every pending job in the publish queue once and exits.
Jobs that fail keep their remaining attempt budget and are retried on the
next run (or by a running server).

Use --status to list queue state without publishing anything.`,
	RunE: runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log, err := buildLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := publish.NewStore(cfg.Publish.StateDir)
	if err != nil {
		return err
	}
	defer store.Close()

	statusOnly, _ := cmd.Flags().GetBool("status")
	if statusOnly {
		return printQueueStatus(cmd, store)
	}

	ws := publish.NewWorkspace(cfg.Publish, log)
	if !ws.Configured() {
		return fmt.Errorf("workspace not configured: set publish.database_id and the workspace token")
	}

	worker := publish.NewWorker(store, ws, cfg.Publish, log)
	worker.DrainOnce(context.Background())
	return nil
}

// printQueueStatus lists the stored analyses with their latest job state.
func printQueueStatus(cmd *cobra.Command, store *publish.Store) error {
	ctx := context.Background()
	analyses, err := store.ListAnalyses(ctx)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	type row struct {
		File    string `json:"file"`
		Name    string `json:"name"`
		Status  string `json:"status"`
		PageURL string `json:"page_url,omitempty"`
		Message string `json:"message,omitempty"`
	}
	rows := make([]row, 0, len(analyses))
	for _, a := range analyses {
		r := row{File: a.FileKey, Name: a.Name, Status: "unqueued"}
		if job, err := store.JobStatus(ctx, a.FileKey); err == nil {
			r.Status = job.Status
			r.PageURL = job.PageURL
			r.Message = job.Message
		}
		rows = append(rows, r)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No stored analyses.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "%-40s  %-10s  %s\n", "File", "Status", "Page")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))
	for _, r := range rows {
		fmt.Fprintf(os.Stdout, "%-40s  %-10s  %s\n", r.File, r.Status, r.PageURL)
	}
	return nil
}

func init() {
	publishCmd.Flags().Bool("status", false, "list queue state instead of publishing")
	publishCmd.Flags().Bool("json", false, "output queue state as JSON")

	rootCmd.AddCommand(publishCmd)
}
