package app

import (
	"time"

	"github.com/hylla/taskify/internal/domain"
)

const day = 24 * time.Hour

// DemoTasks returns the sample board content, with due dates relative to now.
func DemoTasks(now time.Time) []SeedTask {
	due := func(days int) *time.Time {
		ts := now.UTC().Add(time.Duration(days) * day)
		return &ts
	}
	return []SeedTask{
		{Input: AddTaskInput{
			Title:       "Design new landing page",
			Description: "Create wireframes and mockups for the new marketing landing page",
			Status:      domain.StatusTodo,
			Priority:    domain.PriorityHigh,
			DueAt:       due(5),
		}},
		{Input: AddTaskInput{
			Title:       "Fix navigation bug",
			Description: "There is an issue with the dropdown menu on mobile devices",
			Status:      domain.StatusTodo,
			Priority:    domain.PriorityMedium,
			DueAt:       due(2),
		}},
		{Input: AddTaskInput{
			Title:       "Update dependencies",
			Description: "Update all packages to the latest versions",
			Status:      domain.StatusInProgress,
			Priority:    domain.PriorityLow,
			DueAt:       due(1),
		}, Age: day},
		{Input: AddTaskInput{
			Title:       "Create API documentation",
			Description: "Document all API endpoints and parameters",
			Status:      domain.StatusInProgress,
			Priority:    domain.PriorityHigh,
			DueAt:       due(3),
		}, Age: 2 * day},
		{Input: AddTaskInput{
			Title:       "Review pull requests",
			Description: "Go through open PRs and provide feedback",
			Status:      domain.StatusDone,
			Priority:    domain.PriorityMedium,
		}, Age: 3 * day},
		{Input: AddTaskInput{
			Title:       "Setup testing environment",
			Description: "Configure the unit and integration test runners",
			Status:      domain.StatusDone,
			Priority:    domain.PriorityHigh,
		}, Age: 5 * day},
	}
}
