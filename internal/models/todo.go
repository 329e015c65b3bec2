package models

import (
	"strings"
	"time"
)

const (
	CategoryWork     = "Work"
	CategoryPersonal = "Personal"
	CategoryWishlist = "Wishlist"

	// FilterAll selects every category on the dashboard.
	FilterAll = "All"
)

// Due dates are persisted as strings in a form whose lexicographic order
// equals chronological order.
const (
	DueDateLayout      = "2006-01-02 15:04"
	DueDateInputLayout = "2006-01-02T15:04"
	DayLayout          = "2006-01-02"
)

type Todo struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Title     string    `json:"title" gorm:"not null"`
	Category  string    `json:"category" gorm:"not null;default:'Personal'"`
	DueDate   *string   `json:"due_date"`
	IsDone    bool      `json:"is_done" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// DueTime parses the stored due date. The second return is false for todos
// without a due date or with one that does not parse.
func (t *Todo) DueTime() (time.Time, bool) {
	if t.DueDate == nil {
		return time.Time{}, false
	}
	raw := strings.TrimSpace(*t.DueDate)
	if raw == "" {
		return time.Time{}, false
	}
	if due, err := time.Parse(DueDateLayout, raw); err == nil {
		return due, true
	}
	if due, err := time.Parse(DayLayout, raw); err == nil {
		return due, true
	}
	return time.Time{}, false
}

// HasDueDate reports whether the todo carries a non-empty due date string.
func (t *Todo) HasDueDate() bool {
	return t.DueDate != nil && strings.TrimSpace(*t.DueDate) != ""
}

// NormalizeCategory coerces input to the allowed category set, defaulting to
// Personal on anything else.
func NormalizeCategory(category string) string {
	switch category {
	case CategoryWork, CategoryPersonal, CategoryWishlist:
		return category
	default:
		return CategoryPersonal
	}
}

// NormalizeFilter coerces a dashboard filter value, defaulting to All.
func NormalizeFilter(filter string) string {
	switch filter {
	case FilterAll, CategoryWork, CategoryPersonal, CategoryWishlist:
		return filter
	default:
		return FilterAll
	}
}

// NormalizeDueDate rewrites the datetime-local input form "2006-01-02T15:04"
// into the stored form "2006-01-02 15:04". Empty input yields nil. Input that
// matches neither layout is stored as given after the separator rewrite.
func NormalizeDueDate(input string) *string {
	due := strings.TrimSpace(input)
	if due == "" {
		return nil
	}
	due = strings.Replace(due, "T", " ", 1)
	return &due
}
