package genai

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskweave/taskweave/internal/metrics"
	inats "github.com/taskweave/taskweave/internal/nats"
	"github.com/taskweave/taskweave/internal/usage"
)

// TextGenerator produces the model's raw text reply for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// QuotaLedger gates and records generation attempts.
type QuotaLedger interface {
	Check(ctx context.Context, userID uuid.UUID) (usage.Status, error)
	Record(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID) error
}

// ProjectCreator persists a validated generation result and returns the
// new project ID.
type ProjectCreator interface {
	CreateFromGenerated(ctx context.Context, userID uuid.UUID, project *GeneratedProject) (uuid.UUID, error)
}

// Service runs the generation pipeline: validate input, check quota, build
// the prompt, call the model, ingest the reply, persist the project, record
// usage. Every failure is classified before it reaches the caller.
type Service struct {
	inputValidator *InputValidator
	ledger         QuotaLedger
	model          TextGenerator
	creator        ProjectCreator
	publisher      *inats.Publisher
}

// NewService creates a new generation Service.
func NewService(inputValidator *InputValidator, ledger QuotaLedger, model TextGenerator, creator ProjectCreator, publisher *inats.Publisher) *Service {
	return &Service{
		inputValidator: inputValidator,
		ledger:         ledger,
		model:          model,
		creator:        creator,
		publisher:      publisher,
	}
}

// Result is a successful generation outcome. Warning is set when the
// project was created but the usage record could not be written.
type Result struct {
	ProjectID uuid.UUID         `json:"project_id"`
	Project   *GeneratedProject `json:"project"`
	Usage     usage.Status      `json:"usage"`
	Warning   string            `json:"warning,omitempty"`
}

// Generate runs one generation attempt for the user.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, in GenerationInput) (*Result, error) {
	metrics.GenerationAttemptsTotal.Inc()

	result, err := s.generate(ctx, userID, in)
	if err != nil {
		metrics.GenerationOutcomesTotal.WithLabelValues(string(Classify(err).Kind)).Inc()
		return nil, err
	}
	metrics.GenerationOutcomesTotal.WithLabelValues("ok").Inc()
	return result, nil
}

func (s *Service) generate(ctx context.Context, userID uuid.UUID, in GenerationInput) (*Result, error) {
	if err := s.inputValidator.Validate(in); err != nil {
		return nil, err
	}

	// Best-effort gate: a concurrent attempt may slip past this read. The
	// append-only Record below is the durable action; a small over-limit
	// race is accepted rather than paying for a transactional reservation.
	// A degraded status came from the advisory cache, which is never
	// authoritative for enforcement, so it cannot deny the attempt.
	st, err := s.ledger.Check(ctx, userID)
	if err != nil {
		return nil, err
	}
	if st.HasReachedLimit && !st.Degraded {
		return nil, &Error{Kind: KindQuotaExceeded, ResetTime: st.ResetTime}
	}

	prompt := BuildPrompt(in)

	rawText, err := s.model.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	project, err := Ingest(rawText)
	if err != nil {
		return nil, err
	}

	projectID, err := s.creator.CreateFromGenerated(ctx, userID, project)
	if err != nil {
		slog.Error("genai: persisting generated project failed", "error", err, "user_id", userID)
		return nil, newError(KindUnknown, err.Error())
	}

	result := &Result{ProjectID: projectID, Project: project}

	// The model call already happened and the project exists, so a failed
	// usage record downgrades to a warning instead of failing the attempt.
	if err := s.ledger.Record(ctx, userID, &projectID); err != nil {
		slog.Warn("genai: recording generation usage failed", "error", err, "user_id", userID)
		result.Warning = Classify(&Error{Kind: KindQuotaRecord}).Message
	}

	if after, err := s.ledger.Check(ctx, userID); err == nil {
		result.Usage = after
	}

	if s.publisher != nil {
		ev := inats.ProjectGeneratedEvent{
			ProjectID: projectID,
			UserID:    userID,
			Title:     project.Title,
			TaskCount: len(project.Tasks),
			CreatedAt: time.Now().UTC(),
		}
		if err := s.publisher.PublishProjectGenerated(ctx, ev); err != nil {
			slog.Warn("genai: publishing project.generated failed", "error", err, "project_id", projectID)
		}
	}

	return result, nil
}

// Usage returns the user's current quota status.
func (s *Service) Usage(ctx context.Context, userID uuid.UUID) (usage.Status, error) {
	return s.ledger.Check(ctx, userID)
}
