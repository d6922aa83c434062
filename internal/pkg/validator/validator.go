package validator

import (
	"fmt"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
)

const maxQueryLength = 1000

// Validator checks incoming API requests before they reach the usecases.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) ValidateFederatedSearch(req *entity.FederatedSearchRequest) error {
	if req.Query == "" {
		return fmt.Errorf("%w: query", entity.ErrMissingField)
	}
	if len(req.Query) > maxQueryLength {
		return fmt.Errorf("%w: query exceeds %d characters", entity.ErrInvalidParameter, maxQueryLength)
	}
	if req.Principal.UserID == "" {
		return fmt.Errorf("%w: user_id", entity.ErrMissingField)
	}
	if req.Principal.Role != "" {
		if err := req.Principal.Role.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func (v *Validator) ValidateCategorizedSearch(req *entity.CategorizedSearchRequest) error {
	if req.Query == "" {
		return fmt.Errorf("%w: query", entity.ErrMissingField)
	}
	if len(req.Query) > maxQueryLength {
		return fmt.Errorf("%w: query exceeds %d characters", entity.ErrInvalidParameter, maxQueryLength)
	}

	return nil
}

func (v *Validator) ValidateCreateSession(req *entity.CreateSessionRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("%w: user_id", entity.ErrMissingField)
	}
	if req.Role == "" {
		return fmt.Errorf("%w: role", entity.ErrMissingField)
	}

	return req.Role.Validate()
}

func (v *Validator) ValidateAccessCheck(req *entity.AccessCheckRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("%w: user_id", entity.ErrMissingField)
	}
	if req.Action == "" {
		return fmt.Errorf("%w: action", entity.ErrMissingField)
	}
	if err := req.Action.Validate(); err != nil {
		return err
	}
	if req.Resource == "" {
		return fmt.Errorf("%w: resource", entity.ErrMissingField)
	}

	return nil
}

func (v *Validator) ValidateGenerateReport(req *entity.GenerateReportRequest) error {
	if req.Topic == "" {
		return fmt.Errorf("%w: topic", entity.ErrMissingField)
	}

	return nil
}

func (v *Validator) ValidateDedup(req *entity.DedupRequest) error {
	if len(req.Documents) == 0 {
		return fmt.Errorf("%w: documents", entity.ErrMissingField)
	}
	for _, doc := range req.Documents {
		if doc.ID == "" {
			return fmt.Errorf("%w: document id", entity.ErrMissingField)
		}
	}

	return nil
}

func (v *Validator) ValidateROI(req *entity.ROIRequest) error {
	if req.Baseline.ResearchTimeHours <= 0 {
		return fmt.Errorf("%w: baseline avg_research_time_hours must be positive", entity.ErrInvalidParameter)
	}
	if req.Current.ResearchTimeHours <= 0 {
		return fmt.Errorf("%w: current avg_research_time_hours must be positive", entity.ErrInvalidParameter)
	}

	return nil
}
