package character

import (
	"strings"
)

// Category names one section of a character sheet.
type Category string

const (
	CategoryStats   Category = "Stats"
	CategorySkills  Category = "Skills"
	CategoryTalents Category = "Talents"
	CategoryHealth  Category = "Health"
	CategoryInfo    Category = "Info"
)

// Categories lists the sheet sections in selector order.
var Categories = []Category{CategoryStats, CategorySkills, CategoryTalents, CategoryHealth, CategoryInfo}

// ParseCategory matches value case-insensitively against the known
// categories.
func ParseCategory(value string) (Category, bool) {
	value = strings.TrimSpace(value)
	for _, category := range Categories {
		if strings.EqualFold(string(category), value) {
			return category, true
		}
	}
	return "", false
}

// Editable reports whether the category can be changed through a form.
func (c Category) Editable() bool {
	return c == CategoryStats || c == CategoryHealth
}

func (c Category) String() string {
	return string(c)
}

// Table is the tabular view of one category. Every row has one cell per
// column.
type Table struct {
	Category Category
	Columns  []string
	Rows     [][]string
}
