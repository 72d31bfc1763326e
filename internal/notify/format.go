package notify

import (
	"fmt"
	"strings"

	"github.com/hollowoak/farmhand/internal/models"
)

// Color constants for event severity.
const (
	ColorSuccess = "#36a64f"
	ColorInfo    = "#2196f3"
	ColorWarning = "#ff9800"
	ColorError   = "#e53935"
)

// SeverityColor maps a severity string to a sidebar color.
func SeverityColor(severity string) string {
	switch severity {
	case "success":
		return ColorSuccess
	case "warning":
		return ColorWarning
	case "error":
		return ColorError
	default:
		return ColorInfo
	}
}

// taskStateVerb returns a human-friendly verb for a task state change.
func taskStateVerb(newState string) string {
	switch newState {
	case models.TaskBacklog:
		return "backlogged"
	case models.TaskTodo:
		return "queued"
	case models.TaskInProgress:
		return "started"
	case models.TaskDone:
		return "completed"
	case models.TaskCancelled:
		return "cancelled"
	default:
		return newState
	}
}

// taskStateSeverity returns the appropriate severity for a task state.
func taskStateSeverity(newState string) string {
	switch newState {
	case models.TaskDone:
		return "success"
	case models.TaskCancelled:
		return "warning"
	default:
		return "info"
	}
}

// FormatTaskEvent formats a task state change.
func FormatTaskEvent(t models.Task, oldState string) Event {
	verb := taskStateVerb(t.State)
	severity := taskStateSeverity(t.State)

	var bodyParts []string
	if oldState != "" && oldState != t.State {
		bodyParts = append(bodyParts, fmt.Sprintf("%s to %s", oldState, t.State))
	}
	if t.Description != "" {
		bodyParts = append(bodyParts, t.Description)
	}

	fields := []Field{
		{Name: "Task", Value: t.ID, Short: true},
		{Name: "State", Value: t.State, Short: true},
	}
	if t.CycleID != nil {
		fields = append(fields, Field{Name: "Cycle", Value: *t.CycleID, Short: true})
	}

	return Event{
		Kind:     KindTaskCompleted,
		Title:    fmt.Sprintf("Task %q %s", t.Title, verb),
		Body:     strings.Join(bodyParts, "\n"),
		Severity: severity,
		Fields:   fields,
	}
}

// FormatCycleEvent announces a freshly opened cycle.
func FormatCycleEvent(c models.Cycle, totalDays int) Event {
	return Event{
		Kind:     KindCycleStarted,
		Title:    fmt.Sprintf("Cycle %q started", c.Name),
		Body:     fmt.Sprintf("Runs %s through %s (%d days).", c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02"), totalDays),
		Severity: "info",
		Fields: []Field{
			{Name: "Cycle", Value: c.ID, Short: true},
			{Name: "Ends", Value: c.EndDate.Format("2006-01-02"), Short: true},
		},
	}
}

// FormatMoveEvent formats an asset move from its movement log.
func FormatMoveEvent(log models.FarmLog) Event {
	fields := []Field{{Name: "Log", Value: log.ID, Short: true}}
	if log.FromLocationID != nil {
		fields = append(fields, Field{Name: "From", Value: *log.FromLocationID, Short: true})
	}
	if log.ToLocationID != nil {
		fields = append(fields, Field{Name: "To", Value: *log.ToLocationID, Short: true})
	}
	return Event{
		Kind:     KindAssetMoved,
		Title:    log.Name,
		Body:     log.Notes,
		Severity: "info",
		Fields:   fields,
	}
}
