package stats

import (
	"testing"

	"formpilot/internal/api"
)

func TestSummarizeNilPage(t *testing.T) {
	s := Summarize(nil)
	if s != (Summary{}) {
		t.Errorf("expected zero summary for nil page, got %+v", s)
	}
}

func TestSummarizeCounts(t *testing.T) {
	page := &api.HistoryPage{
		Total: 45,
		Items: []api.JobSnapshot{
			{Status: api.StatusCompleted, QuestionsFilled: 10, AIAnswersUsed: 2},
			{Status: api.StatusCompleted, QuestionsFilled: 5, AIAnswersUsed: 0},
			{Status: api.StatusFailed, QuestionsFilled: 1, AIAnswersUsed: 1},
			{Status: api.StatusFilling, QuestionsFilled: 3, AIAnswersUsed: 0},
		},
	}

	s := Summarize(page)
	want := Summary{
		TotalRuns:       45,
		Completed:       2,
		Failed:          1,
		QuestionsFilled: 19,
		AIAnswersUsed:   3,
	}
	if s != want {
		t.Errorf("Summarize() = %+v, want %+v", s, want)
	}
}

func TestSummarizeInProgressJobsNotCountedAsOutcome(t *testing.T) {
	page := &api.HistoryPage{
		Total: 1,
		Items: []api.JobSnapshot{{Status: api.StatusPending}},
	}
	s := Summarize(page)
	if s.Completed != 0 || s.Failed != 0 {
		t.Errorf("pending job counted as an outcome: %+v", s)
	}
}
