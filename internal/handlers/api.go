package handlers

import (
	"log"
	"net/http"

	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// APIHandler serves the JSON feeds consumed by the calendar widget. Missing
// authentication yields an empty array, never an error.
type APIHandler struct {
	db          *gorm.DB
	todoService services.TodoService
}

func NewAPIHandler(db *gorm.DB, todoService services.TodoService) *APIHandler {
	return &APIHandler{db: db, todoService: todoService}
}

func (h *APIHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/events", h.Events)
	api.GET("/day", h.Day)
}

func (h *APIHandler) Events(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, []services.Event{})
		return
	}

	events, err := h.todoService.Events(h.db, userID)
	if err != nil {
		log.Printf("events query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load events"})
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *APIHandler) Day(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, []models.Todo{})
		return
	}

	day := c.Query("date")
	if day == "" {
		c.JSON(http.StatusOK, []models.Todo{})
		return
	}

	todos, err := h.todoService.CalendarDay(h.db, userID, day)
	if err != nil {
		log.Printf("day query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tasks"})
		return
	}

	c.JSON(http.StatusOK, todos)
}
