package repository

import (
	"testing"
	"time"

	"study-plan-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestCoursePlansWriteFilter(t *testing.T) {
	filter := coursePlansWriteFilter("user-1", map[string]int64{
		"powerbi": 3,
		"sql":     0,
	})

	conditions, ok := filter["$and"].([]bson.M)
	if !ok {
		t.Fatalf("expected $and conditions, got %T", filter["$and"])
	}
	if len(conditions) != 3 {
		t.Fatalf("expected userId plus one guard per course, got %d conditions", len(conditions))
	}
	if conditions[0]["userId"] != "user-1" {
		t.Errorf("first condition must pin the user, got %v", conditions[0])
	}

	// Each course guard accepts the expected version or an absent plan.
	guards := map[string]int64{}
	for _, cond := range conditions[1:] {
		or, ok := cond["$or"].([]bson.M)
		if !ok || len(or) != 2 {
			t.Fatalf("malformed version guard: %v", cond)
		}
		for key, value := range or[0] {
			if version, ok := value.(int64); ok {
				guards[key] = version
			}
		}
	}
	if guards["coursePlans.powerbi.version"] != 3 {
		t.Errorf("powerbi guard = %v, want 3", guards)
	}
	if guards["coursePlans.sql.version"] != 0 {
		t.Errorf("sql guard = %v, want 0", guards)
	}
}

func TestCoursePlansWriteUpdate(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	plans := map[string]models.CoursePlan{
		"powerbi": {Plan: models.StudyPlan{ExpectedCompletionDate: "2024-07-10"}},
		"sql":     {Plan: models.StudyPlan{ExpectedCompletionDate: "2024-07-05"}},
	}

	update := coursePlansWriteUpdate(plans, map[string]int64{"powerbi": 3, "sql": 0}, now)

	set, ok := update["$set"].(bson.M)
	if !ok {
		t.Fatalf("expected $set document, got %T", update["$set"])
	}
	if set["metadata.updatedAt"] != int(now.Unix()) {
		t.Errorf("updatedAt not stamped: %v", set["metadata.updatedAt"])
	}

	powerbi, ok := set["coursePlans.powerbi"].(models.CoursePlan)
	if !ok {
		t.Fatalf("powerbi plan missing from $set: %v", set)
	}
	if powerbi.Version != 4 {
		t.Errorf("powerbi version = %d, want expected+1 = 4", powerbi.Version)
	}

	sql, ok := set["coursePlans.sql"].(models.CoursePlan)
	if !ok {
		t.Fatalf("sql plan missing from $set: %v", set)
	}
	if sql.Version != 1 {
		t.Errorf("sql version = %d, want expected+1 = 1", sql.Version)
	}

	// Both plans land in the same update document: the write is atomic.
	if len(set) != 3 {
		t.Errorf("expected 2 plans plus updatedAt in one $set, got %d keys", len(set))
	}
}
