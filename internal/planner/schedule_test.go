package planner

import (
	"errors"
	"testing"
	"time"

	"study-plan-service/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestApplyScheduleWorkedExample(t *testing.T) {
	// 5 lessons of 1200s, 60 min/day, study on seg/qua/sex starting Monday
	// 2024-01-01. Packing gives 3+2; mapping gives Mon and Wed.
	pending := []models.Lesson{
		lesson("pbi-1", 1200),
		lesson("pbi-2", 1200),
		lesson("pbi-3", 1200),
		lesson("pbi-4", 1200),
		lesson("pbi-5", 1200),
	}
	master := BuildMasterPlan(pending, 3600)

	allowed := map[time.Weekday]bool{
		time.Monday:    true,
		time.Wednesday: true,
		time.Friday:    true,
	}
	start := date(2024, time.January, 1)

	plan, err := ApplySchedule(master, allowed, start, start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Plan) != 2 {
		t.Fatalf("expected 2 plan days, got %d", len(plan.Plan))
	}
	if plan.Plan[0].Date != "2024-01-01" {
		t.Errorf("day 1: expected 2024-01-01, got %s", plan.Plan[0].Date)
	}
	if plan.Plan[1].Date != "2024-01-03" {
		t.Errorf("day 2: expected 2024-01-03, got %s", plan.Plan[1].Date)
	}
	if plan.ExpectedCompletionDate != "2024-01-03" {
		t.Errorf("expected completion 2024-01-03, got %s", plan.ExpectedCompletionDate)
	}
	if len(plan.Plan[0].Lessons) != 3 || len(plan.Plan[1].Lessons) != 2 {
		t.Errorf("expected 3/2 lessons, got %d/%d", len(plan.Plan[0].Lessons), len(plan.Plan[1].Lessons))
	}
}

func TestApplyScheduleSkipsDisallowedWeekdays(t *testing.T) {
	master := []DayBucket{
		{lesson("pbi-1", 600)},
		{lesson("pbi-2", 600)},
		{lesson("pbi-3", 600)},
	}
	// Saturday only, starting on a Monday.
	allowed := map[time.Weekday]bool{time.Saturday: true}
	start := date(2024, time.January, 1)

	plan, err := ApplySchedule(master, allowed, start, start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"2024-01-06", "2024-01-13", "2024-01-20"}
	for i, w := range want {
		if plan.Plan[i].Date != w {
			t.Errorf("day %d: expected %s, got %s", i, w, plan.Plan[i].Date)
		}
	}
}

func TestApplyScheduleDatesStrictlyIncrease(t *testing.T) {
	var master []DayBucket
	for i := 0; i < 20; i++ {
		master = append(master, DayBucket{lesson("pbi-1", 600)})
	}
	allowed := map[time.Weekday]bool{time.Tuesday: true, time.Thursday: true}

	plan, err := ApplySchedule(master, allowed, date(2024, time.March, 4), date(2024, time.March, 4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(plan.Plan); i++ {
		if plan.Plan[i].Date <= plan.Plan[i-1].Date {
			t.Fatalf("dates not strictly increasing at %d: %s then %s", i, plan.Plan[i-1].Date, plan.Plan[i].Date)
		}
	}
	for i, day := range plan.Plan {
		d, err := time.Parse(models.DateLayout, day.Date)
		if err != nil {
			t.Fatalf("day %d: bad date %q: %v", i, day.Date, err)
		}
		if !allowed[d.Weekday()] {
			t.Errorf("day %d: %s falls on disallowed weekday %s", i, day.Date, d.Weekday())
		}
	}
}

func TestApplyScheduleEmptyMasterPlan(t *testing.T) {
	today := date(2024, time.June, 10)
	allowed := map[time.Weekday]bool{time.Monday: true}

	plan, err := ApplySchedule(nil, allowed, today, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Plan) != 0 {
		t.Errorf("expected empty plan, got %d days", len(plan.Plan))
	}
	if plan.ExpectedCompletionDate != "2024-06-10" {
		t.Errorf("expected completion date to be today, got %s", plan.ExpectedCompletionDate)
	}
}

func TestApplyScheduleRejectsEmptyWeekdaySet(t *testing.T) {
	master := []DayBucket{{lesson("pbi-1", 600)}}

	_, err := ApplySchedule(master, map[time.Weekday]bool{}, date(2024, time.January, 1), date(2024, time.January, 1))
	if !errors.Is(err, ErrNoStudyDays) {
		t.Fatalf("expected ErrNoStudyDays, got %v", err)
	}
}
