// Package stats aggregates fill-job history into the dashboard counters.
package stats

import "formpilot/internal/api"

// Summary holds the aggregate counters shown on the dashboard. TotalRuns is
// the backend's total across all pages; the remaining counters cover only
// the items in the summarized page.
type Summary struct {
	TotalRuns       int
	Completed       int
	Failed          int
	QuestionsFilled int
	AIAnswersUsed   int
}

// Summarize folds one history page into a Summary. Nil pages yield zeroes.
func Summarize(page *api.HistoryPage) Summary {
	var s Summary
	if page == nil {
		return s
	}
	s.TotalRuns = page.Total
	for _, item := range page.Items {
		switch item.Status {
		case api.StatusCompleted:
			s.Completed++
		case api.StatusFailed:
			s.Failed++
		}
		s.QuestionsFilled += item.QuestionsFilled
		s.AIAnswersUsed += item.AIAnswersUsed
	}
	return s
}
