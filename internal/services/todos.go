package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"task-tracker/backend/internal/models"

	"gorm.io/gorm"
)

// Event is a calendar entry projected from a dated todo.
type Event struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Start  string `json:"start"`
	AllDay bool   `json:"allDay"`
}

// OverviewReport aggregates a user's todos for the overview page. ByCategory
// counts pending todos only; categories with no pending todos are absent.
type OverviewReport struct {
	Completed  int64            `json:"completed"`
	Pending    int64            `json:"pending"`
	Next7      []models.Todo    `json:"next7"`
	ByCategory map[string]int64 `json:"by_category"`
}

type TodoService interface {
	CreateTodo(db *gorm.DB, userID uint, title, dueDate, category string) (*models.Todo, error)
	Dashboard(db *gorm.DB, userID uint, filter string, now time.Time) ([]models.Todo, error)
	CalendarDay(db *gorm.DB, userID uint, day string) ([]models.Todo, error)
	Events(db *gorm.DB, userID uint) ([]Event, error)
	Overview(db *gorm.DB, userID uint, now time.Time) (*OverviewReport, error)
	ToggleTodo(db *gorm.DB, id, userID uint) error
	DeleteTodo(db *gorm.DB, id, userID uint) error
}

type TodoServiceImpl struct{}

func NewTodoService() *TodoServiceImpl {
	return &TodoServiceImpl{}
}

// CreateTodo normalizes the raw form input and inserts the todo. Category and
// due date coerce to safe defaults; the title is trimmed but otherwise taken
// as given.
func (s *TodoServiceImpl) CreateTodo(db *gorm.DB, userID uint, title, dueDate, category string) (*models.Todo, error) {
	todo := models.Todo{
		UserID:   userID,
		Title:    strings.TrimSpace(title),
		Category: models.NormalizeCategory(category),
		DueDate:  models.NormalizeDueDate(dueDate),
	}
	if err := db.Create(&todo).Error; err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return &todo, nil
}

// orderBucket assigns the coarse priority tier used by the dashboard sort:
// 0 overdue pending, 1 upcoming pending, 2 pending without a due date,
// 3 completed.
func orderBucket(t *models.Todo, now time.Time) int {
	if t.IsDone {
		return 3
	}
	due, ok := t.DueTime()
	switch {
	case !ok:
		return 2
	case due.Before(now):
		return 0
	default:
		return 1
	}
}

// lessTodo is the dashboard comparator: pending before done, then bucket,
// then due date ascending (undated rows first within a tier, matching SQLite
// NULL ordering), then newest created first.
func lessTodo(a, b *models.Todo, now time.Time) bool {
	if a.IsDone != b.IsDone {
		return !a.IsDone
	}
	ab, bb := orderBucket(a, now), orderBucket(b, now)
	if ab != bb {
		return ab < bb
	}
	at, aok := a.DueTime()
	bt, bok := b.DueTime()
	if aok && bok && !at.Equal(bt) {
		return at.Before(bt)
	}
	if aok != bok {
		return !aok
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// Dashboard returns the user's todos under the given category filter, ordered
// overdue first, then upcoming by nearest due date, then undated pending, then
// completed, with newest-created breaking ties.
func (s *TodoServiceImpl) Dashboard(db *gorm.DB, userID uint, filter string, now time.Time) ([]models.Todo, error) {
	filter = models.NormalizeFilter(filter)

	query := db.Where("user_id = ?", userID)
	if filter != models.FilterAll {
		query = query.Where("category = ?", filter)
	}

	var todos []models.Todo
	if err := query.Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	sort.SliceStable(todos, func(i, j int) bool {
		return lessTodo(&todos[i], &todos[j], now)
	})

	return todos, nil
}

// CalendarDay returns the user's todos due on the given calendar date
// (YYYY-MM-DD), ordered by due date. An empty date yields an empty result.
func (s *TodoServiceImpl) CalendarDay(db *gorm.DB, userID uint, day string) ([]models.Todo, error) {
	if day == "" {
		return []models.Todo{}, nil
	}

	todos := []models.Todo{}
	err := db.
		Where("user_id = ? AND due_date IS NOT NULL AND substr(due_date, 1, 10) = ?", userID, day).
		Order("due_date ASC").
		Find(&todos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list todos for day %s: %w", day, err)
	}
	return todos, nil
}

// Events projects the user's dated todos into calendar events. Timed todos
// become "YYYY-MM-DDTHH:MM:00" entries; date-only todos become all-day
// entries. Undated todos are skipped.
func (s *TodoServiceImpl) Events(db *gorm.DB, userID uint) ([]Event, error) {
	var todos []models.Todo
	err := db.
		Where("user_id = ? AND due_date IS NOT NULL", userID).
		Find(&todos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list dated todos: %w", err)
	}

	events := make([]Event, 0, len(todos))
	for i := range todos {
		todo := &todos[i]
		due := strings.TrimSpace(derefString(todo.DueDate))
		if due == "" {
			continue
		}

		event := Event{
			ID:    todo.ID,
			Title: fmt.Sprintf("[%s] %s", todo.Category, todo.Title),
		}
		if datePart, timePart, found := strings.Cut(due, " "); found {
			event.Start = fmt.Sprintf("%sT%s:00", datePart, timePart)
			event.AllDay = false
		} else {
			event.Start = due
			event.AllDay = true
		}
		events = append(events, event)
	}

	return events, nil
}

// Overview computes completed/pending counts, the pending todos due in the
// next seven days, and the pending-per-category histogram.
func (s *TodoServiceImpl) Overview(db *gorm.DB, userID uint, now time.Time) (*OverviewReport, error) {
	report := &OverviewReport{
		Next7:      []models.Todo{},
		ByCategory: make(map[string]int64),
	}

	err := db.Model(&models.Todo{}).
		Where("user_id = ? AND is_done = ?", userID, true).
		Count(&report.Completed).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count completed todos: %w", err)
	}

	err = db.Model(&models.Todo{}).
		Where("user_id = ? AND is_done = ?", userID, false).
		Count(&report.Pending).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count pending todos: %w", err)
	}

	nowStr := now.Format(models.DueDateLayout)
	endStr := now.AddDate(0, 0, 7).Format(models.DueDateLayout)
	err = db.
		Where("user_id = ? AND is_done = ? AND due_date IS NOT NULL AND due_date >= ? AND due_date <= ?",
			userID, false, nowStr, endStr).
		Order("due_date ASC").
		Find(&report.Next7).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming todos: %w", err)
	}

	var rows []struct {
		Category string
		Count    int64
	}
	err = db.Model(&models.Todo{}).
		Select("category, COUNT(*) as count").
		Where("user_id = ? AND is_done = ?", userID, false).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group pending todos: %w", err)
	}
	for _, row := range rows {
		report.ByCategory[row.Category] = row.Count
	}

	return report, nil
}

// ToggleTodo flips the completion flag of the todo owned by userID. A row
// belonging to another user is untouched; zero rows affected is not an error.
func (s *TodoServiceImpl) ToggleTodo(db *gorm.DB, id, userID uint) error {
	err := db.Model(&models.Todo{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_done", gorm.Expr("NOT is_done")).Error
	if err != nil {
		return fmt.Errorf("failed to toggle todo %d: %w", id, err)
	}
	return nil
}

// DeleteTodo removes the todo owned by userID. Cross-user attempts match zero
// rows and are a silent no-op.
func (s *TodoServiceImpl) DeleteTodo(db *gorm.DB, id, userID uint) error {
	err := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Todo{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete todo %d: %w", id, err)
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
