package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/tempo/internal/domain"
)

// ShowConfigTemplateInput contains the input for the ShowConfigTemplate use case.
type ShowConfigTemplateInput struct {
	Config  *domain.Config // Values to render (nil = defaults)
	DataDir string         // Data directory shown in the template header
}

// ShowConfigTemplateOutput contains the output of the ShowConfigTemplate use case.
type ShowConfigTemplateOutput struct {
	Template string // Configuration template content
}

// ShowConfigTemplate renders the commented configuration template.
type ShowConfigTemplate struct{}

// NewShowConfigTemplate creates a new ShowConfigTemplate use case.
func NewShowConfigTemplate() *ShowConfigTemplate {
	return &ShowConfigTemplate{}
}

// Execute generates and returns a configuration template.
func (uc *ShowConfigTemplate) Execute(_ context.Context, in ShowConfigTemplateInput) (*ShowConfigTemplateOutput, error) {
	cfg := in.Config
	if cfg == nil {
		cfg = domain.NewDefaultConfig()
	}
	template, err := domain.RenderConfigTemplate(cfg, in.DataDir)
	if err != nil {
		return nil, fmt.Errorf("render config template: %w", err)
	}
	return &ShowConfigTemplateOutput{Template: template}, nil
}
