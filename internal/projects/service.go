package projects

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskweave/taskweave/internal/genai"
)

// Service turns validated generation results into persisted records. It is
// the downstream consumer of the generation pipeline; the rest of the
// project/task CRUD surface lives elsewhere.
type Service struct {
	repo *Repository
}

// NewService creates a new projects Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// CreateFromGenerated persists a validated GeneratedProject for the user
// and returns the new project ID.
func (s *Service) CreateFromGenerated(ctx context.Context, userID uuid.UUID, gp *genai.GeneratedProject) (uuid.UUID, error) {
	startDate, err := time.Parse("2006-01-02", gp.StartDate)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing project start date: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", gp.EndDate)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing project end date: %w", err)
	}

	project := &Project{
		ID:          uuid.New(),
		OwnerUserID: userID,
		Title:       gp.Title,
		Description: gp.Description,
		Status:      gp.Status,
		Priority:    gp.Priority,
		StartDate:   startDate,
		EndDate:     endDate,
		AIGenerated: true,
	}

	tasks := make([]Task, 0, len(gp.Tasks))
	for _, gt := range gp.Tasks {
		taskStart, err := time.Parse("2006-01-02", gt.StartDate)
		if err != nil {
			return uuid.Nil, fmt.Errorf("parsing task start date: %w", err)
		}
		taskEnd, err := time.Parse("2006-01-02", gt.EndDate)
		if err != nil {
			return uuid.Nil, fmt.Errorf("parsing task end date: %w", err)
		}

		tasks = append(tasks, Task{
			ID:          uuid.New(),
			ProjectID:   project.ID,
			Title:       gt.Title,
			Description: gt.Description,
			Status:      gt.Status,
			Priority:    gt.Priority,
			StartDate:   taskStart,
			EndDate:     taskEnd,
			Completed:   gt.Completed,
			OrderIndex:  gt.OrderIndex,
			ParentID:    gt.ParentID,
		})
	}

	if err := s.repo.CreateWithTasks(ctx, project, tasks); err != nil {
		return uuid.Nil, err
	}

	return project.ID, nil
}
