package handlers

import (
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TodoHandler serves the dashboard, calendar, and overview pages and the
// owner-scoped toggle/delete mutations.
type TodoHandler struct {
	db          *gorm.DB
	todoService services.TodoService
	now         func() time.Time
}

func NewTodoHandler(db *gorm.DB, todoService services.TodoService) *TodoHandler {
	return &TodoHandler{db: db, todoService: todoService, now: time.Now}
}

func (h *TodoHandler) RegisterRoutes(r *gin.Engine) {
	authed := r.Group("/", middleware.RequirePage())
	authed.GET("/dashboard", h.Dashboard)
	authed.POST("/dashboard", h.AddTodo)
	authed.POST("/toggle/:id", h.Toggle)
	authed.POST("/delete/:id", h.Delete)
	authed.GET("/calendar-simple", h.CalendarSimple)
	authed.GET("/calendar", h.Calendar)
	authed.GET("/overview", h.Overview)
}

func (h *TodoHandler) Dashboard(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	filter := models.NormalizeFilter(c.Query("cat"))
	now := h.now()

	todos, err := h.todoService.Dashboard(h.db, userID, filter, now)
	if err != nil {
		log.Printf("dashboard query failed: %v", err)
		c.String(http.StatusInternalServerError, "Could not load your tasks.")
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"todos":      todos,
		"now":        now.Format(models.DueDateLayout),
		"cat":        filter,
		"activePage": "tasks",
	})
}

// AddTodo creates a task from the dashboard form and redirects back,
// preserving the selected category tab.
func (h *TodoHandler) AddTodo(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	filter := models.NormalizeFilter(c.Query("cat"))

	_, err := h.todoService.CreateTodo(h.db, userID,
		c.PostForm("title"),
		c.PostForm("due_date"),
		c.PostForm("category"),
	)
	if err != nil {
		log.Printf("create todo failed: %v", err)
		c.String(http.StatusInternalServerError, "Could not add the task.")
		return
	}

	c.Redirect(http.StatusSeeOther, "/dashboard?cat="+url.QueryEscape(filter))
}

func (h *TodoHandler) Toggle(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		redirectBack(c)
		return
	}

	if err := h.todoService.ToggleTodo(h.db, uint(id), userID); err != nil {
		log.Printf("toggle todo failed: %v", err)
	}
	redirectBack(c)
}

func (h *TodoHandler) Delete(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		redirectBack(c)
		return
	}

	if err := h.todoService.DeleteTodo(h.db, uint(id), userID); err != nil {
		log.Printf("delete todo failed: %v", err)
	}
	redirectBack(c)
}

func (h *TodoHandler) CalendarSimple(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	selected := c.Query("date")

	tasks, err := h.todoService.CalendarDay(h.db, userID, selected)
	if err != nil {
		log.Printf("calendar day query failed: %v", err)
		c.String(http.StatusInternalServerError, "Could not load the calendar.")
		return
	}

	c.HTML(http.StatusOK, "calendar.html", gin.H{
		"selected": selected,
		"tasks":    tasks,
	})
}

func (h *TodoHandler) Calendar(c *gin.Context) {
	c.HTML(http.StatusOK, "calendar_ui.html", gin.H{
		"activePage": "calendar",
	})
}

func (h *TodoHandler) Overview(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	report, err := h.todoService.Overview(h.db, userID, h.now())
	if err != nil {
		log.Printf("overview query failed: %v", err)
		c.String(http.StatusInternalServerError, "Could not load the overview.")
		return
	}

	c.HTML(http.StatusOK, "overview.html", gin.H{
		"completed":  report.Completed,
		"pending":    report.Pending,
		"next7":      report.Next7,
		"byCategory": report.ByCategory,
		"activePage": "overview",
	})
}

// redirectBack returns the browser to the page that submitted the form, or
// the dashboard when no referrer is present.
func redirectBack(c *gin.Context) {
	target := c.Request.Referer()
	if target == "" {
		target = "/dashboard"
	}
	c.Redirect(http.StatusSeeOther, target)
}
