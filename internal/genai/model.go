package genai

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// GeneratedProject is the validated, typed result of a generation attempt.
// It is an in-memory structure; persisting it is the project service's job.
type GeneratedProject struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
	Tasks       []GeneratedTask `json:"tasks"`
}

type GeneratedTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	StartDate   string     `json:"startDate"`
	EndDate     string     `json:"endDate"`
	Completed   bool       `json:"completed"`
	OrderIndex  int        `json:"orderIndex"`
	ParentID    *uuid.UUID `json:"parentId"`
}

var projectStatuses = map[string]bool{
	"not_started": true,
	"in_progress": true,
	"completed":   true,
	"on_hold":     true,
}

var taskStatuses = map[string]bool{
	"todo":        true,
	"in_progress": true,
	"completed":   true,
	"blocked":     true,
}

var priorities = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
}

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 5000
)

func validDate(s string) bool {
	if !dateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// validate checks every field of the project and every task against the
// schema. It collects all reasons instead of stopping at the first;
// acceptance is all-or-nothing, so a single bad task rejects the whole
// response.
func (p *GeneratedProject) validate() []string {
	var reasons []string

	if p.Title == "" {
		reasons = append(reasons, "project title is empty")
	} else if len(p.Title) > maxTitleLen {
		reasons = append(reasons, fmt.Sprintf("project title exceeds %d characters", maxTitleLen))
	}
	if len(p.Description) > maxDescriptionLen {
		reasons = append(reasons, fmt.Sprintf("project description exceeds %d characters", maxDescriptionLen))
	}
	if !projectStatuses[p.Status] {
		reasons = append(reasons, fmt.Sprintf("project status %q is not one of not_started/in_progress/completed/on_hold", p.Status))
	}
	if !priorities[p.Priority] {
		reasons = append(reasons, fmt.Sprintf("project priority %q is not one of low/medium/high", p.Priority))
	}
	if !validDate(p.StartDate) {
		reasons = append(reasons, fmt.Sprintf("project startDate %q is not a valid YYYY-MM-DD date", p.StartDate))
	}
	if !validDate(p.EndDate) {
		reasons = append(reasons, fmt.Sprintf("project endDate %q is not a valid YYYY-MM-DD date", p.EndDate))
	}

	for i, t := range p.Tasks {
		if t.Title == "" {
			reasons = append(reasons, fmt.Sprintf("task %d: title is empty", i))
		} else if len(t.Title) > maxTitleLen {
			reasons = append(reasons, fmt.Sprintf("task %d: title exceeds %d characters", i, maxTitleLen))
		}
		if len(t.Description) > maxDescriptionLen {
			reasons = append(reasons, fmt.Sprintf("task %d: description exceeds %d characters", i, maxDescriptionLen))
		}
		if !taskStatuses[t.Status] {
			reasons = append(reasons, fmt.Sprintf("task %d: status %q is not one of todo/in_progress/completed/blocked", i, t.Status))
		}
		if !priorities[t.Priority] {
			reasons = append(reasons, fmt.Sprintf("task %d: priority %q is not one of low/medium/high", i, t.Priority))
		}
		if !validDate(t.StartDate) {
			reasons = append(reasons, fmt.Sprintf("task %d: startDate %q is not a valid YYYY-MM-DD date", i, t.StartDate))
		}
		if !validDate(t.EndDate) {
			reasons = append(reasons, fmt.Sprintf("task %d: endDate %q is not a valid YYYY-MM-DD date", i, t.EndDate))
		}
		if t.OrderIndex < 0 {
			reasons = append(reasons, fmt.Sprintf("task %d: orderIndex %d is negative", i, t.OrderIndex))
		}
	}

	return reasons
}
