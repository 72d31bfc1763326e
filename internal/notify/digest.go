package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/hollowoak/farmhand/internal/logger"
	"github.com/hollowoak/farmhand/internal/rollup"
	"github.com/hollowoak/farmhand/internal/task"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom,
// month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// nextCronDuration parses a 5-field cron expression and returns the
// duration until the next fire time. Returns 0 on parse error.
func nextCronDuration(expr string) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0
	}
	next := sched.Next(time.Now())
	d := time.Until(next)
	if d < 0 {
		return 0
	}
	return d
}

// BuildOverdueDigest summarizes overdue and blocked tasks. Returns nil
// when there is nothing to report.
func BuildOverdueDigest(db *gorm.DB, now time.Time) (*Event, error) {
	overdue, err := task.List(db, task.ListFilters{Overdue: true, Now: now})
	if err != nil {
		return nil, fmt.Errorf("notify: overdue digest: %w", err)
	}
	blocked, err := task.List(db, task.ListFilters{Blocked: true})
	if err != nil {
		return nil, fmt.Errorf("notify: overdue digest: %w", err)
	}
	if len(overdue) == 0 && len(blocked) == 0 {
		return nil, nil
	}

	var lines []string
	for _, t := range overdue {
		line := fmt.Sprintf("- %s (due %s)", t.Title, t.TargetDate.Format("2006-01-02"))
		if t.Estimate != nil {
			line += ", " + rollup.FormatEstimate(*t.Estimate)
		}
		lines = append(lines, line)
	}

	severity := "info"
	if len(overdue) > 0 {
		severity = "warning"
	}
	return &Event{
		Kind:     KindOverdueDigest,
		Title:    fmt.Sprintf("Daily digest: %d overdue, %d blocked", len(overdue), len(blocked)),
		Body:     strings.Join(lines, "\n"),
		Severity: severity,
		Fields: []Field{
			{Name: "Overdue", Value: fmt.Sprint(len(overdue)), Short: true},
			{Name: "Blocked", Value: fmt.Sprint(len(blocked)), Short: true},
		},
	}, nil
}

// RunDigest sends the overdue digest on the given cron schedule until
// ctx is cancelled. A bad expression logs once and disables the digest.
func RunDigest(ctx context.Context, db *gorm.DB, n Notifier, cronExpr string, log *logger.Logger) {
	if _, err := cronParser.Parse(cronExpr); err != nil {
		log.Error("invalid digest cron expression", "expr", cronExpr, "error", err)
		return
	}
	for {
		wait := nextCronDuration(cronExpr)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		event, err := BuildOverdueDigest(db, time.Now())
		if err != nil {
			log.Error("digest build failed", "error", err)
			continue
		}
		if event == nil {
			log.Debug("digest skipped, nothing to report")
			continue
		}
		if err := n.Send(ctx, *event); err != nil {
			log.Warn("digest send failed", "error", err)
		}
	}
}
