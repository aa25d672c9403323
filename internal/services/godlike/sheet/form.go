package sheet

import (
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/godlike/internal/platform/errors"
	"github.com/louisbranch/godlike/internal/services/godlike/character"
	"github.com/louisbranch/godlike/internal/services/godlike/storage"
)

// Form field ids. Submitted values are bound by id, never by position.
const (
	FieldStats  = "stats"
	FieldWounds = "wounds"
	FieldWill   = "will"
	FieldStatus = "status"
)

const (
	statsUsage  = "Brains, Body, Command, Coordination, Cool, Sense, BaseWill"
	healthUsage = "Current Will must be a whole number"
)

// Field is one input of an edit form.
type Field struct {
	ID        string
	Label     string
	Value     string
	Multiline bool
}

// Form is an edit form pre-populated with the current values of a category.
type Form struct {
	Title    string
	Category character.Category
	Fields   []Field
}

func newForm(t character.Table) (Form, error) {
	switch t.Category {
	case character.CategoryStats:
		if len(t.Rows) == 0 {
			return Form{}, apperrors.New(apperrors.CodeNoData, "stats row missing")
		}
		return Form{
			Title:    "Edit Stats",
			Category: character.CategoryStats,
			Fields: []Field{
				{ID: FieldStats, Label: "Stats", Value: strings.Join(t.Rows[0], ",")},
			},
		}, nil
	case character.CategoryHealth:
		wounds, status, will := healthValues(t)
		return Form{
			Title:    "Edit Wounds",
			Category: character.CategoryHealth,
			Fields: []Field{
				{ID: FieldWounds, Label: "Wounds", Value: wounds, Multiline: true},
				{ID: FieldWill, Label: "Current Will", Value: will},
				{ID: FieldStatus, Label: "Health Status", Value: status},
			},
		}, nil
	default:
		return Form{}, notEditable(t.Category)
	}
}

// ParseStats reads the comma-separated stats field in Brains, Body, Command,
// Coordination, Cool, Sense, BaseWill order.
func ParseStats(values map[string]string) (storage.Stats, error) {
	raw, ok := values[FieldStats]
	if !ok {
		return storage.Stats{}, malformedForm(statsUsage)
	}
	parts := strings.Split(raw, ",")
	if len(parts) != len(storage.StatNames) {
		return storage.Stats{}, malformedForm(statsUsage)
	}
	numbers := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return storage.Stats{}, malformedForm(statsUsage)
		}
		numbers[i] = n
	}
	stats, err := storage.StatsFromValues(numbers)
	if err != nil {
		return storage.Stats{}, malformedForm(statsUsage)
	}
	return stats, nil
}

// ParseHealth binds the wounds, will and status fields by id.
func ParseHealth(values map[string]string) (storage.Health, error) {
	will, err := strconv.Atoi(strings.TrimSpace(values[FieldWill]))
	if err != nil {
		return storage.Health{}, malformedForm(healthUsage)
	}
	return storage.Health{
		WoundSlot:    values[FieldWounds],
		HealthStatus: strings.TrimSpace(values[FieldStatus]),
		CurrentWill:  will,
	}, nil
}

func malformedForm(usage string) error {
	return apperrors.WithMetadata(apperrors.CodeMalformedRequest, "malformed form", map[string]string{"Usage": usage})
}

func notEditable(category character.Category) error {
	return apperrors.WithMetadata(
		apperrors.CodeCategoryNotEditable,
		"category not editable",
		map[string]string{"Category": category.String()},
	)
}
