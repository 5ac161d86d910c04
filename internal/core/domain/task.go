package domain

import (
	"strings"
	"time"
)

// TaskStatus is the progress state of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "À faire"
	TaskInProgress TaskStatus = "En cours"
	TaskDone       TaskStatus = "Terminé"
	TaskLate       TaskStatus = "En retard"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone, TaskLate:
		return true
	}
	return false
}

// TaskPriority ranks tasks for the assignee.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "Haute"
	PriorityMedium TaskPriority = "Moyenne"
	PriorityLow    TaskPriority = "Basse"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Task is a piece of work assigned to an employee, usually for a client.
type Task struct {
	ID           string       `json:"id" bson:"_id"`
	Title        string       `json:"title" bson:"title"`
	Description  string       `json:"description" bson:"description"`
	ClientID     string       `json:"client_id,omitempty" bson:"client_id,omitempty"`
	ClientName   string       `json:"client_name,omitempty" bson:"client_name,omitempty"`
	AssigneeID   string       `json:"assignee_id,omitempty" bson:"assignee_id,omitempty"`
	AssigneeName string       `json:"assignee_name,omitempty" bson:"assignee_name,omitempty"`
	Status       TaskStatus   `json:"status" bson:"status"`
	Priority     TaskPriority `json:"priority" bson:"priority"`
	DueDate      time.Time    `json:"due_date" bson:"due_date"`
	CreatedBy    string       `json:"created_by" bson:"created_by"`
	CreatedAt    time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" bson:"updated_at"`
}

// EffectiveStatus returns TaskLate for an unfinished task past its due date.
func (t *Task) EffectiveStatus(now time.Time) TaskStatus {
	if t.Status != TaskDone && !t.DueDate.IsZero() && now.After(t.DueDate) {
		return TaskLate
	}
	return t.Status
}

// Matches searches the title, the client and the assignee.
func (t *Task) Matches(term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	for _, s := range []string{t.Title, t.ClientName, t.AssigneeName} {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

// TaskInput is submitted when creating a task.
type TaskInput struct {
	Title       string
	Description string
	ClientID    string
	AssigneeID  string
	Priority    TaskPriority
	DueDate     time.Time
}

func (in TaskInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return Invalid("title", "is required")
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return Invalid("priority", "must be one of Haute, Moyenne, Basse")
	}
	return nil
}

// TaskPatch updates progress or assignment; nil fields are unchanged.
type TaskPatch struct {
	Status     *TaskStatus
	Priority   *TaskPriority
	AssigneeID *string
	DueDate    *time.Time
}

func (p TaskPatch) Validate() error {
	if p.Status != nil && !p.Status.Valid() {
		return Invalid("status", "is not a known task status")
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return Invalid("priority", "must be one of Haute, Moyenne, Basse")
	}
	return nil
}
