package sheet

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "github.com/louisbranch/godlike/internal/platform/errors"
	"github.com/louisbranch/godlike/internal/services/godlike/character"
	"github.com/louisbranch/godlike/internal/services/godlike/storage"
)

type fakeRepo struct {
	mu      sync.Mutex
	stats   storage.Stats
	health  storage.Health
	skills  []storage.Skill
	replace int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		stats:  storage.DefaultStats(),
		health: character.DefaultHealth(),
	}
}

func (f *fakeRepo) FetchCategory(_ context.Context, _ int64, category character.Category) (character.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch category {
	case character.CategoryStats:
		values := f.stats.Values()
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = strconv.Itoa(v)
		}
		return character.Table{Category: category, Columns: storage.StatNames[:], Rows: [][]string{row}}, nil
	case character.CategoryHealth:
		return character.Table{
			Category: category,
			Columns:  []string{"WoundSlot", "HealthStatus", "CurrentWill"},
			Rows:     [][]string{{f.health.WoundSlot, f.health.HealthStatus, strconv.Itoa(f.health.CurrentWill)}},
		}, nil
	case character.CategorySkills:
		if len(f.skills) == 0 {
			return character.Table{}, apperrors.New(apperrors.CodeNoData, "no data")
		}
		rows := make([][]string, 0, len(f.skills))
		for _, skill := range f.skills {
			rows = append(rows, []string{skill.Name, skill.Attribute, strconv.Itoa(skill.Rating)})
		}
		return character.Table{Category: category, Columns: []string{"SkillName", "Attribute", "Rating"}, Rows: rows}, nil
	case character.CategoryInfo:
		return character.Table{Category: category, Columns: []string{"Nickname", "FullName"}, Rows: [][]string{{"Rex", "John Doe"}}}, nil
	default:
		return character.Table{}, apperrors.New(apperrors.CodeNoData, "no data")
	}
}

func (f *fakeRepo) ReplaceStats(_ context.Context, _ int64, stats storage.Stats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats = stats
	f.replace++
	return nil
}

func (f *fakeRepo) ReplaceHealth(_ context.Context, _ int64, health storage.Health) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.health = health
	f.replace++
	return nil
}

func (f *fakeRepo) replacements() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.replace
}

func openSession(t *testing.T, repo Repository, opts ...HubOption) (*Hub, *Session) {
	t.Helper()

	hub := NewHub(repo, opts...)
	t.Cleanup(hub.Close)
	return hub, hub.Open(1, "Rex")
}

func TestSessionStartsIdle(t *testing.T) {
	t.Parallel()

	_, s := openSession(t, newFakeRepo())
	if s.State() != StateIdle {
		t.Fatalf("state = %s, want %s", s.State(), StateIdle)
	}
	if got := s.IdleView().Content; got != "Rex Character Sheet" {
		t.Fatalf("idle content = %q", got)
	}
}

func TestEditBeforeSelect(t *testing.T) {
	t.Parallel()

	_, s := openSession(t, newFakeRepo())
	_, err := s.Edit(context.Background())
	if !apperrors.HasCode(err, apperrors.CodeCategoryNotSelected) {
		t.Fatalf("error = %v, want %s", err, apperrors.CodeCategoryNotSelected)
	}
	if got := apperrors.UserMessage(err, "en-US"); got != "Please select a category before editing." {
		t.Fatalf("message = %q", got)
	}
	if s.State() != StateIdle {
		t.Fatalf("state = %s, want %s", s.State(), StateIdle)
	}
}

func TestSelectEditSubmitStats(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	_, s := openSession(t, repo)
	ctx := context.Background()

	view, err := s.Select(ctx, character.CategoryStats)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if view.State != StateCategoryShown || !view.Editable {
		t.Fatalf("view = %+v, want editable category view", view)
	}
	if !strings.Contains(view.Content, "Brains") {
		t.Fatalf("content = %q, want stats table", view.Content)
	}

	form, err := s.Edit(ctx)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if len(form.Fields) != 1 || form.Fields[0].ID != FieldStats || form.Fields[0].Value != "1,1,1,1,1,1,2" {
		t.Fatalf("form = %+v", form)
	}
	if s.State() != StateEditFormOpen {
		t.Fatalf("state = %s, want %s", s.State(), StateEditFormOpen)
	}

	view, err = s.Submit(ctx, map[string]string{FieldStats: "2, 3,1,4,2,3,5"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if view.Notice != NoticeStatsUpdated {
		t.Fatalf("notice = %q, want %q", view.Notice, NoticeStatsUpdated)
	}
	if view.State != StateCategoryShown {
		t.Fatalf("state = %s, want %s", view.State, StateCategoryShown)
	}
	want := storage.Stats{Brains: 2, Body: 3, Command: 1, Coordination: 4, Cool: 2, Sense: 3, BaseWill: 5}
	if repo.stats != want {
		t.Fatalf("stats = %+v, want %+v", repo.stats, want)
	}
}

func TestSubmitMalformedStatsKeepsFormOpen(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	_, s := openSession(t, repo)
	ctx := context.Background()

	if _, err := s.Select(ctx, character.CategoryStats); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := s.Edit(ctx); err != nil {
		t.Fatalf("edit: %v", err)
	}

	for _, value := range []string{"1,2,3", "1,2,3,4,5,6,x", "1,2,3,4,5,6,7,8"} {
		_, err := s.Submit(ctx, map[string]string{FieldStats: value})
		if !apperrors.HasCode(err, apperrors.CodeMalformedRequest) {
			t.Fatalf("Submit(%q) error = %v, want %s", value, err, apperrors.CodeMalformedRequest)
		}
		if s.State() != StateEditFormOpen {
			t.Fatalf("state = %s, want %s", s.State(), StateEditFormOpen)
		}
	}
	if repo.replacements() != 0 {
		t.Fatalf("replacements = %d, want 0", repo.replacements())
	}
}

func TestSubmitHealthBindsByFieldID(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	_, s := openSession(t, repo)
	ctx := context.Background()

	if _, err := s.Select(ctx, character.CategoryHealth); err != nil {
		t.Fatalf("select: %v", err)
	}
	form, err := s.Edit(ctx)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	ids := make([]string, len(form.Fields))
	for i, field := range form.Fields {
		ids[i] = field.ID
	}
	if got := strings.Join(ids, ","); got != "wounds,will,status" {
		t.Fatalf("field ids = %q", got)
	}

	view, err := s.Submit(ctx, map[string]string{
		FieldStatus: "Wounded",
		FieldWounds: "Head xxoo\n",
		FieldWill:   "7",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if view.Notice != NoticeHealthUpdated {
		t.Fatalf("notice = %q", view.Notice)
	}
	want := storage.Health{WoundSlot: "Head xxoo\n", HealthStatus: "Wounded", CurrentWill: 7}
	if repo.health != want {
		t.Fatalf("health = %+v, want %+v", repo.health, want)
	}
	if !strings.Contains(view.Content, "*Current Will:* **7**") || !strings.Contains(view.Content, "*Status:* **Wounded**") {
		t.Fatalf("content = %q", view.Content)
	}

	if _, err := s.Edit(ctx); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if _, err := s.Submit(ctx, map[string]string{FieldWill: "many"}); !apperrors.HasCode(err, apperrors.CodeMalformedRequest) {
		t.Fatalf("bad will error = %v, want %s", err, apperrors.CodeMalformedRequest)
	}
}

func TestEditReadOnlyCategory(t *testing.T) {
	t.Parallel()

	_, s := openSession(t, newFakeRepo())
	ctx := context.Background()

	view, err := s.Select(ctx, character.CategoryInfo)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if view.Editable {
		t.Fatal("info should not be editable")
	}
	if _, err := s.Edit(ctx); !apperrors.HasCode(err, apperrors.CodeCategoryNotEditable) {
		t.Fatalf("error = %v, want %s", err, apperrors.CodeCategoryNotEditable)
	}
}

func TestSelectEmptyCategory(t *testing.T) {
	t.Parallel()

	_, s := openSession(t, newFakeRepo())
	view, err := s.Select(context.Background(), character.CategorySkills)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if view.Content != "No data available for this category." {
		t.Fatalf("content = %q", view.Content)
	}
	if view.Editable {
		t.Fatal("empty category should not be editable")
	}
}

func TestCancelAndSelectLeaveForm(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	_, s := openSession(t, repo)
	ctx := context.Background()

	if _, err := s.Cancel(ctx); !apperrors.HasCode(err, apperrors.CodeFormNotOpen) {
		t.Fatalf("cancel error = %v, want %s", err, apperrors.CodeFormNotOpen)
	}
	if _, err := s.Select(ctx, character.CategoryStats); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := s.Edit(ctx); err != nil {
		t.Fatalf("edit: %v", err)
	}
	view, err := s.Cancel(ctx)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if view.State != StateCategoryShown {
		t.Fatalf("state = %s, want %s", view.State, StateCategoryShown)
	}

	if _, err := s.Edit(ctx); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if _, err := s.Select(ctx, character.CategoryHealth); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := s.Submit(ctx, map[string]string{FieldStats: "1,1,1,1,1,1,1"}); !apperrors.HasCode(err, apperrors.CodeFormNotOpen) {
		t.Fatalf("submit error = %v, want %s", err, apperrors.CodeFormNotOpen)
	}
	if repo.replacements() != 0 {
		t.Fatalf("replacements = %d, want 0", repo.replacements())
	}
}

func TestSessionExpiresAfterInactivity(t *testing.T) {
	t.Parallel()

	hub, s := openSession(t, newFakeRepo(), WithTimeout(20*time.Millisecond))

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not expire")
	}
	if s.State() != StateClosed {
		t.Fatalf("state = %s, want %s", s.State(), StateClosed)
	}
	if _, err := s.Select(context.Background(), character.CategoryStats); !apperrors.HasCode(err, apperrors.CodeSessionExpired) {
		t.Fatalf("error = %v, want %s", err, apperrors.CodeSessionExpired)
	}
	if _, err := hub.Get(s.ID()); !apperrors.HasCode(err, apperrors.CodeSessionExpired) {
		t.Fatalf("hub get error = %v, want %s", err, apperrors.CodeSessionExpired)
	}
	if hub.Len() != 0 {
		t.Fatalf("hub len = %d, want 0", hub.Len())
	}
}

func TestHubGetAndClose(t *testing.T) {
	t.Parallel()

	hub := NewHub(newFakeRepo())
	first := hub.Open(1, "Rex")
	second := hub.Open(2, "Ada")
	if first.ID() == second.ID() {
		t.Fatal("expected distinct session ids")
	}
	got, err := hub.Get(first.ID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != first {
		t.Fatal("get returned a different session")
	}
	if hub.Len() != 2 {
		t.Fatalf("len = %d, want 2", hub.Len())
	}

	hub.Close()
	if hub.Len() != 0 {
		t.Fatalf("len after close = %d, want 0", hub.Len())
	}
	if _, err := second.Edit(context.Background()); !apperrors.HasCode(err, apperrors.CodeSessionExpired) {
		t.Fatalf("error = %v, want %s", err, apperrors.CodeSessionExpired)
	}
}
