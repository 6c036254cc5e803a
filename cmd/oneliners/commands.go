package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/brightpath/oneliners/internal/config"
	"github.com/brightpath/oneliners/internal/openai"
	"github.com/brightpath/oneliners/internal/pipeline"
)

// --- process ---

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process all active form entries and print the results",
	Long: `Process all active form entries: summarize each through the assistant,
store an embedding per entry, and print the per-entry statuses and the final
cumulative summary. This blocks until the whole run finishes, which can take
several minutes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		printStep("Processing entries (this can take a few minutes)...")
		resp, err := client.post(cmd.Context(), "/process", nil)
		if err != nil {
			return err
		}

		var result pipeline.Result
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		for _, e := range result.Entries {
			if e.Status == "Complete" {
				printSuccess("entry %d: %s", e.EntryID, e.Status)
				for _, s := range e.OneLiner {
					printStep("%s", s)
				}
			} else {
				printError("entry %d: %s", e.EntryID, e.Status)
			}
		}

		if result.Success {
			printSuccess("Final summary:")
			for _, s := range result.FinalSummary {
				printStatus("  ", "%s", s)
			}
		} else {
			printError("%s", result.FinalError)
		}
		return nil
	},
}

// --- entries ---

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List the active form entries a run would process",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/entries")
		if err != nil {
			return err
		}

		var result struct {
			Entries []struct {
				ID     int64             `json:"id"`
				Status string            `json:"status"`
				Fields map[string]string `json:"fields"`
			} `json:"entries"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Entries) == 0 {
			printWarning("no active entries found")
			return nil
		}
		for _, e := range result.Entries {
			preview := ""
			for _, v := range e.Fields {
				preview = strings.TrimSpace(v)
				if preview != "" {
					break
				}
			}
			if len(preview) > 60 {
				preview = preview[:60] + "…"
			}
			printStatus(fmt.Sprintf("entry %d", e.ID), "%s", preview)
		}
		return nil
	},
}

// --- validate ---

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the configured assistant ID is valid",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		client := openai.NewClientWithBaseURL(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
		ok, err := client.ValidateAssistant(ctx, cfg.OpenAI.AssistantID)
		if err != nil {
			return fmt.Errorf("validating assistant: %w", err)
		}
		if !ok {
			printError("assistant %s is not valid", cfg.OpenAI.AssistantID)
			return fmt.Errorf("invalid assistant ID")
		}
		printSuccess("assistant %s is valid", cfg.OpenAI.AssistantID)
		return nil
	},
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the oneliners server is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/health")
		if err != nil {
			printError("server is not running")
			return err
		}
		resp.Body.Close()
		printSuccess("server is running at %s", client.baseURL)
		return nil
	},
}
