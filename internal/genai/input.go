package genai

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/taskweave/taskweave/internal/config"
)

// GenerationInput is the user-supplied request for an AI-generated project.
// Callers are responsible for ensuring StartDate <= EndDate; this package
// only checks the individual field rules.
type GenerationInput struct {
	Description string `json:"description"`
	NumTasks    int    `json:"num_tasks"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// InputValidator checks GenerationInput against the configured bounds,
// collecting every violation rather than stopping at the first so the user
// can fix everything in one pass.
type InputValidator struct {
	validate *validator.Validate
	cfg      config.GenerationConfig
}

func NewInputValidator(cfg config.GenerationConfig) *InputValidator {
	return &InputValidator{
		validate: validator.New(),
		cfg:      cfg,
	}
}

// Validate returns nil or a classified validation error listing all
// violated rules.
func (iv *InputValidator) Validate(in GenerationInput) error {
	var violations []string

	descRule := fmt.Sprintf("required,min=%d,max=%d", iv.cfg.MinDescriptionLen, iv.cfg.MaxDescriptionLen)
	if err := iv.validate.Var(in.Description, descRule); err != nil {
		violations = append(violations, fmt.Sprintf(
			"description must be between %d and %d characters",
			iv.cfg.MinDescriptionLen, iv.cfg.MaxDescriptionLen))
	}

	tasksRule := fmt.Sprintf("min=%d,max=%d", iv.cfg.MinTasks, iv.cfg.MaxTasks)
	if err := iv.validate.Var(in.NumTasks, tasksRule); err != nil {
		violations = append(violations, fmt.Sprintf(
			"number of tasks must be between %d and %d",
			iv.cfg.MinTasks, iv.cfg.MaxTasks))
	}

	if err := iv.validate.Var(in.StartDate, "required,datetime=2006-01-02"); err != nil {
		violations = append(violations, "start date must be in YYYY-MM-DD form")
	}

	if err := iv.validate.Var(in.EndDate, "required,datetime=2006-01-02"); err != nil {
		violations = append(violations, "end date must be in YYYY-MM-DD form")
	}

	if len(violations) > 0 {
		return &Error{Kind: KindValidation, Violations: violations}
	}
	return nil
}
