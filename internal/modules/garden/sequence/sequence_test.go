package sequence

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/sprout-backend/internal/domain/plant"
	"github.com/yungbote/sprout-backend/internal/modules/garden/growthplan"
)

func drafts(titles ...string) []growthplan.StepDraft {
	out := make([]growthplan.StepDraft, len(titles))
	for i, t := range titles {
		out[i] = growthplan.StepDraft{Title: t, Description: t + " desc", EstimatedTime: "1 day"}
	}
	return out
}

func ids(steps []plant.GrowthStep) []int {
	out := make([]int, len(steps))
	for i, s := range steps {
		out[i] = s.ID
	}
	return out
}

func TestNumber(t *testing.T) {
	got := Number(drafts("sow", "water", "harvest"))
	want := []plant.GrowthStep{
		{ID: 1, Title: "sow", Description: "sow desc", EstimatedTime: "1 day"},
		{ID: 2, Title: "water", Description: "water desc", EstimatedTime: "1 day"},
		{ID: 3, Title: "harvest", Description: "harvest desc", EstimatedTime: "1 day"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Number mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertRemediation_AfterLastCompleted(t *testing.T) {
	existing := []plant.GrowthStep{
		{ID: 1, Title: "a", IsCompleted: true},
		{ID: 2, Title: "b", IsCompleted: true},
		{ID: 3, Title: "c"},
	}
	got := InsertRemediation(existing, drafts("fix1", "fix2"), PolicyHead)

	if diff := cmp.Diff([]int{1, 2, 4, 5, 3}, ids(got)); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if got[2].Title != "fix1" || got[3].Title != "fix2" {
		t.Fatalf("remediation order wrong: %q, %q", got[2].Title, got[3].Title)
	}
	if got[2].IsCompleted || got[3].IsCompleted {
		t.Fatalf("remediation steps must start pending")
	}
	if got[4].Title != "c" {
		t.Fatalf("step 3 moved: %+v", got[4])
	}
	if len(existing) != 3 {
		t.Fatalf("input slice was modified")
	}
}

func TestInsertRemediation_CompletedNotContiguous(t *testing.T) {
	existing := []plant.GrowthStep{
		{ID: 1, IsCompleted: true},
		{ID: 2},
		{ID: 3, IsCompleted: true},
		{ID: 4},
	}
	got := InsertRemediation(existing, drafts("fix"), PolicyHead)
	if diff := cmp.Diff([]int{1, 2, 3, 5, 4}, ids(got)); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertRemediation_NoneCompleted(t *testing.T) {
	existing := []plant.GrowthStep{{ID: 1}, {ID: 2}}

	head := InsertRemediation(existing, drafts("fix"), PolicyHead)
	if diff := cmp.Diff([]int{3, 1, 2}, ids(head)); diff != "" {
		t.Fatalf("head policy (-want +got):\n%s", diff)
	}

	tail := InsertRemediation(existing, drafts("fix"), PolicyAppend)
	if diff := cmp.Diff([]int{1, 2, 3}, ids(tail)); diff != "" {
		t.Fatalf("append policy (-want +got):\n%s", diff)
	}
}

func TestInsertRemediation_EmptyInputs(t *testing.T) {
	got := InsertRemediation(nil, drafts("fix"), PolicyHead)
	if diff := cmp.Diff([]int{1}, ids(got)); diff != "" {
		t.Fatalf("empty timeline (-want +got):\n%s", diff)
	}

	existing := []plant.GrowthStep{{ID: 1, IsCompleted: true}}
	same := InsertRemediation(existing, nil, PolicyHead)
	if diff := cmp.Diff(existing, same); diff != "" {
		t.Fatalf("no drafts should leave steps unchanged (-want +got):\n%s", diff)
	}
}

func TestInsertRemediation_IDsStayUnique(t *testing.T) {
	steps := Number(drafts("a", "b", "c"))
	steps, _, _ = Complete(steps, 1)
	steps = InsertRemediation(steps, drafts("x", "y"), PolicyHead)
	steps, _, _ = Complete(steps, 4)
	steps = InsertRemediation(steps, drafts("z"), PolicyHead)

	seen := map[int]bool{}
	for _, s := range steps {
		if seen[s.ID] {
			t.Fatalf("duplicate id %d in %v", s.ID, ids(steps))
		}
		seen[s.ID] = true
	}
	if diff := cmp.Diff([]int{1, 4, 6, 5, 2, 3}, ids(steps)); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete(t *testing.T) {
	steps := Number(drafts("a", "b", "c"))

	out, changed, err := Complete(steps, 2)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !changed || !out[1].IsCompleted {
		t.Fatalf("step 2 not completed: %+v", out)
	}
	if steps[1].IsCompleted {
		t.Fatalf("input slice was modified")
	}

	again, changed, err := Complete(out, 2)
	if err != nil || changed {
		t.Fatalf("second completion should be a no-op, changed=%v err=%v", changed, err)
	}
	if !again[1].IsCompleted {
		t.Fatalf("completion must not be undone")
	}
}

func TestComplete_UnknownID(t *testing.T) {
	_, _, err := Complete(Number(drafts("a")), 9)
	if !errors.Is(err, ErrStepNotFound) {
		t.Fatalf("want ErrStepNotFound, got %v", err)
	}
}

func TestComplete_UsesIDNotIndex(t *testing.T) {
	steps := []plant.GrowthStep{{ID: 1, IsCompleted: true}, {ID: 3}, {ID: 2}}
	out, _, err := Complete(steps, 2)
	if err != nil {
		t.Fatal(err)
	}
	if out[1].IsCompleted || !out[2].IsCompleted {
		t.Fatalf("wrong step completed: %+v", out)
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"": PolicyHead, "head": PolicyHead, " APPEND ": PolicyAppend} {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Fatalf("ParsePolicy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParsePolicy("middle"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
