package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"formpilot/internal/api"
	"formpilot/internal/poller"
)

var (
	fillAutoSubmit bool
	fillWatch      bool
)

// fillCmd submits a form URL for filling
var fillCmd = &cobra.Command{
	Use:   "fill [form-url]",
	Short: "Submit a Google Form URL for automatic filling",
	Long: `Submit a form URL to the backend, which opens the form, matches each
question against your profile and learned mappings, asks the AI for anything
unmatched, and fills it in.

With --watch the command follows the job until it completes. Without it, the
job id is printed for later 'formpilot status' calls.`,
	Args: cobra.ExactArgs(1),
	RunE: runFill,
}

// statusCmd shows a fill job's current state
var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Show the status of a fill job",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func runFill(cmd *cobra.Command, args []string) error {
	client, store, cfg, err := newClient()
	if err != nil {
		return err
	}
	if err := requireLogin(store); err != nil {
		return err
	}

	snap, err := client.FillForm(cmd.Context(), args[0], fillAutoSubmit)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Job submitted: %s\n", snap.ID)
	if !fillWatch {
		fmt.Printf("\nFollow it with: formpilot status %s\n", snap.ID)
		return nil
	}

	// Watch mode: poll until terminal and stream progress to the terminal.
	done := make(chan *api.JobSnapshot, 1)
	failed := make(chan error, 1)
	p := poller.New(client.JobStatus,
		poller.WithInterval(cfg.PollInterval()),
		poller.WithLogger(logger))
	p.Start(cmd.Context(), snap.ID.String(), poller.Callbacks{
		OnUpdate: func(s *api.JobSnapshot) {
			fmt.Printf("  %s — %d/%d questions filled\n",
				s.Status, s.QuestionsFilled, s.QuestionsDetected)
		},
		OnDone:  func(s *api.JobSnapshot) { done <- s },
		OnError: func(err error) { failed <- err },
	})
	defer p.Stop()

	select {
	case final := <-done:
		printJob(final)
		if final.Status == api.StatusFailed {
			return fmt.Errorf("fill job failed")
		}
		return nil
	case err := <-failed:
		return fmt.Errorf("lost contact with the backend: %w", err)
	case <-cmd.Context().Done():
		return cmd.Context().Err()
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, store, _, err := newClient()
	if err != nil {
		return err
	}
	if err := requireLogin(store); err != nil {
		return err
	}

	snap, err := client.JobStatus(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printJob(snap)
	return nil
}

// printJob renders a job snapshot, including the per-question fill log when
// present.
func printJob(s *api.JobSnapshot) {
	fmt.Printf("\nJob %s\n", s.ID)
	fmt.Println(strings.Repeat("-", 50))
	if s.FormTitle != "" {
		fmt.Printf("  Form:      %s\n", s.FormTitle)
	}
	fmt.Printf("  Status:    %s\n", statusLabel(s.Status))
	fmt.Printf("  Questions: %d detected, %d filled\n", s.QuestionsDetected, s.QuestionsFilled)
	if s.AIAnswersUsed > 0 {
		fmt.Printf("  AI answers: %d\n", s.AIAnswersUsed)
	}
	if s.AutoSubmitted {
		fmt.Println("  Submitted: yes (auto)")
	}
	if s.ErrorMessage != "" {
		fmt.Printf("  Error:     %s\n", s.ErrorMessage)
	}

	if len(s.FillLog) > 0 {
		fmt.Println("\n  Fill log:")
		for _, entry := range s.FillLog {
			fmt.Printf("    [%s] %s -> %s\n", entry.Source, entry.Question, entry.Answer)
		}
	}
}

func statusLabel(s api.JobStatus) string {
	switch s {
	case api.StatusCompleted:
		return "✓ completed"
	case api.StatusFailed:
		return "❌ failed"
	default:
		return string(s)
	}
}

func init() {
	fillCmd.Flags().BoolVar(&fillAutoSubmit, "auto-submit", false, "Submit the form after filling")
	fillCmd.Flags().BoolVarP(&fillWatch, "watch", "w", false, "Follow the job until it finishes")
}
