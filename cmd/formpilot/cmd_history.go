package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"formpilot/internal/stats"
)

var (
	historyPage  int
	historyLimit int
)

// historyCmd lists past fill jobs
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past fill jobs",
	Long:  `List past fill jobs, newest first. Paginate with --page.`,
	RunE:  runHistory,
}

// mappingsCmd manages learned question mappings
var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Manage learned question-to-field mappings",
	Long: `The backend remembers which profile field answered each question so
repeat questions skip the AI. List them here, or delete ones that learned a
wrong answer.

Available subcommands:
  list   - Show all learned mappings
  delete - Delete a mapping by id`,
}

var mappingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all learned mappings",
	RunE:  runMappingsList,
}

var mappingsDeleteCmd = &cobra.Command{
	Use:   "delete <mapping-id>",
	Short: "Delete a learned mapping",
	Args:  cobra.ExactArgs(1),
	RunE:  runMappingsDelete,
}

func runHistory(cmd *cobra.Command, args []string) error {
	client, store, _, err := newClient()
	if err != nil {
		return err
	}
	if err := requireLogin(store); err != nil {
		return err
	}

	pageNum, limit, skip := historyWindow(historyPage, historyLimit)
	page, err := client.History(cmd.Context(), skip, limit)
	if err != nil {
		return err
	}

	if len(page.Items) == 0 {
		if page.Total == 0 {
			fmt.Println("No fill jobs yet. Run 'formpilot fill <url>' to start one.")
		} else {
			fmt.Printf("No jobs on page %d (total %d).\n", pageNum, page.Total)
		}
		return nil
	}

	summary := stats.Summarize(page)
	fmt.Printf("Fill history — page %d (%d total runs)\n", pageNum, summary.TotalRuns)
	fmt.Println(strings.Repeat("-", 70))

	for _, job := range page.Items {
		title := job.FormTitle
		if title == "" {
			title = job.FormURL
		}
		fmt.Printf("  %-26s %-12s %3d/%d filled", job.ID, statusLabel(job.Status),
			job.QuestionsFilled, job.QuestionsDetected)
		if job.AIAnswersUsed > 0 {
			fmt.Printf("  (%d AI)", job.AIAnswersUsed)
		}
		fmt.Printf("\n    %s\n", title)
	}

	fmt.Printf("\nThis page: %d completed, %d failed, %d questions filled\n",
		summary.Completed, summary.Failed, summary.QuestionsFilled)

	totalPages := (page.Total + limit - 1) / limit
	if pageNum < totalPages {
		fmt.Printf("More: formpilot history --page %d\n", pageNum+1)
	}
	return nil
}

// historyWindow clamps the page flags and converts them to the backend's
// skip/limit window.
func historyWindow(page, limit int) (pageNum, pageSize, skip int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	return page, limit, (page - 1) * limit
}

func runMappingsList(cmd *cobra.Command, args []string) error {
	client, store, _, err := newClient()
	if err != nil {
		return err
	}
	if err := requireLogin(store); err != nil {
		return err
	}

	mappings, err := client.Mappings(cmd.Context())
	if err != nil {
		return err
	}
	if len(mappings) == 0 {
		fmt.Println("No learned mappings yet. They appear as forms get filled.")
		return nil
	}

	fmt.Printf("Learned mappings (%d)\n", len(mappings))
	fmt.Println(strings.Repeat("-", 70))
	for _, m := range mappings {
		fmt.Printf("  [%s] %q\n", m.ID, m.QuestionText)
		fmt.Printf("      -> %s = %q (confidence %d%%, used %dx)\n",
			m.MatchedField, m.AnswerValue, m.Confidence, m.TimesUsed)
	}
	return nil
}

func runMappingsDelete(cmd *cobra.Command, args []string) error {
	client, store, _, err := newClient()
	if err != nil {
		return err
	}
	if err := requireLogin(store); err != nil {
		return err
	}

	if err := client.DeleteMapping(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Deleted mapping %s\n", args[0])
	return nil
}

func init() {
	historyCmd.Flags().IntVar(&historyPage, "page", 1, "Page number")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Jobs per page")

	mappingsCmd.AddCommand(mappingsListCmd)
	mappingsCmd.AddCommand(mappingsDeleteCmd)
}
