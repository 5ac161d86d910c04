package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
	"github.com/cabinet-comptable/backoffice/internal/core/ports"
)

type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

type createTaskRequest struct {
	Title       string `json:"title"        validate:"required"`
	Description string `json:"description"`
	ClientID    string `json:"client_id"`
	AssigneeID  string `json:"assignee_id"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"     validate:"omitempty,datetime=2006-01-02"`
}

type updateTaskRequest struct {
	Status     *string `json:"status"`
	Priority   *string `json:"priority"`
	AssigneeID *string `json:"assignee_id"`
	DueDate    *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type taskResponse struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	ClientID     string              `json:"client_id,omitempty"`
	ClientName   string              `json:"client_name,omitempty"`
	AssigneeID   string              `json:"assignee_id,omitempty"`
	AssigneeName string              `json:"assignee_name,omitempty"`
	Status       domain.TaskStatus   `json:"status" swaggertype:"string"`
	Priority     domain.TaskPriority `json:"priority" swaggertype:"string"`
	DueDate      string              `json:"due_date,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

type taskListResponse struct {
	Items []taskResponse `json:"items"`
	Total int            `json:"total"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		ClientID:     t.ClientID,
		ClientName:   t.ClientName,
		AssigneeID:   t.AssigneeID,
		AssigneeName: t.AssigneeName,
		Status:       t.Status,
		Priority:     t.Priority,
		DueDate:      formatDate(t.DueDate),
		CreatedAt:    t.CreatedAt.UTC(),
	}
}

// List handles GET /v1/tasks.
//
// @Summary      List tasks by due date
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  false  "Search over title, client and assignee"
// @Success      200  {object}  taskListResponse
// @Router       /v1/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	tasks, err := h.service.List(c.Request().Context(), id, c.QueryParam("q"))
	if err != nil {
		return err
	}
	items := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, toTaskResponse(t))
	}
	return c.JSON(http.StatusOK, taskListResponse{Items: items, Total: len(items)})
}

// Create handles POST /v1/tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task"
// @Success      201   {object}  taskResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	var req createTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	due, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return err
	}
	t, err := h.service.Create(c.Request().Context(), id, domain.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		ClientID:    req.ClientID,
		AssigneeID:  req.AssigneeID,
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     due,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTaskResponse(t))
}

// Update handles PATCH /v1/tasks/:id.
//
// @Summary      Update status, priority or assignment
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task id"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  taskResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	var req updateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	patch := domain.TaskPatch{AssigneeID: req.AssigneeID}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		patch.Status = &s
	}
	if req.Priority != nil {
		p := domain.TaskPriority(*req.Priority)
		patch.Priority = &p
	}
	if req.DueDate != nil {
		due, err := parseDate("due_date", *req.DueDate)
		if err != nil {
			return err
		}
		patch.DueDate = &due
	}
	t, err := h.service.Update(c.Request().Context(), id, c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(t))
}

// Delete handles DELETE /v1/tasks/:id.
//
// @Summary      Delete a task
// @Tags         tasks
// @Security     BearerAuth
// @Param        id   path  string  true  "Task id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
