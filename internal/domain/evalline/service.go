package evalline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pms/internal/domain/org"
)

type Service struct {
	store *Store
	org   *org.Store
}

func NewService(store *Store, orgStore *org.Store) *Service {
	return &Service{store: store, org: orgStore}
}

// ConfigurePrimaryEvaluator binds evaluatorID as the employee's primary
// evaluator. Re-invoking with the same arguments reuses the existing line
// and mapping rows and reports zero creations.
func (s *Service) ConfigurePrimaryEvaluator(ctx context.Context, employeeID, periodID, evaluatorID, createdBy string) (ConfigureResult, error) {
	return s.configure(ctx, EvaluatorTypePrimary, employeeID, periodID, nil, evaluatorID, createdBy)
}

// ConfigureSecondaryEvaluator binds evaluatorID for one WBS item only.
func (s *Service) ConfigureSecondaryEvaluator(ctx context.Context, employeeID, wbsItemID, periodID, evaluatorID, createdBy string) (ConfigureResult, error) {
	if _, err := s.org.GetWbsItem(ctx, wbsItemID); err != nil {
		if errors.Is(err, org.ErrWbsItemNotFound) {
			return ConfigureResult{}, fmt.Errorf("%w: %s", ErrWbsItemNotFound, wbsItemID)
		}
		return ConfigureResult{}, err
	}
	return s.configure(ctx, EvaluatorTypeSecondary, employeeID, periodID, &wbsItemID, evaluatorID, createdBy)
}

func (s *Service) configure(ctx context.Context, evaluatorType, employeeID, periodID string, wbsItemID *string, evaluatorID, createdBy string) (ConfigureResult, error) {
	period, err := s.org.GetPeriod(ctx, periodID)
	if err != nil {
		if errors.Is(err, org.ErrPeriodNotFound) {
			return ConfigureResult{}, fmt.Errorf("%w: %s", ErrPeriodNotFound, periodID)
		}
		return ConfigureResult{}, err
	}
	if period.IsClosed() {
		return ConfigureResult{}, fmt.Errorf("%w: %s", ErrPeriodClosed, periodID)
	}
	if _, err := s.org.GetEmployee(ctx, employeeID); err != nil {
		if errors.Is(err, org.ErrEmployeeNotFound) {
			return ConfigureResult{}, fmt.Errorf("%w: %s", ErrEmployeeNotFound, employeeID)
		}
		return ConfigureResult{}, err
	}
	if _, err := s.org.GetEmployee(ctx, evaluatorID); err != nil {
		if errors.Is(err, org.ErrEmployeeNotFound) {
			return ConfigureResult{}, fmt.Errorf("%w: %s", ErrEvaluatorNotFound, evaluatorID)
		}
		return ConfigureResult{}, err
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return ConfigureResult{}, err
	}
	defer tx.Rollback(ctx)

	var result ConfigureResult
	line, found, err := s.store.FindLineByTypeTx(ctx, tx, evaluatorType)
	if err != nil {
		return ConfigureResult{}, err
	}
	if !found {
		line, err = s.store.CreateLineTx(ctx, tx, defaultLine(evaluatorType))
		if err != nil {
			return ConfigureResult{}, err
		}
		result.CreatedLines = 1
	}

	mapping, found, err := s.store.FindMappingTx(ctx, tx, employeeID, evaluatorID, wbsItemID, line.ID)
	if err != nil {
		return ConfigureResult{}, err
	}
	if !found {
		mapping, err = s.store.CreateMappingTx(ctx, tx, employeeID, evaluatorID, wbsItemID, line.ID, createdBy)
		if err != nil {
			return ConfigureResult{}, err
		}
		result.CreatedMappings = 1
	}
	result.MappingID = mapping.ID

	if err := tx.Commit(ctx); err != nil {
		return ConfigureResult{}, err
	}
	return result, nil
}

// AutoConfigurePrimaryEvaluators resolves every enrolled employee's manager
// and configures them as primary evaluator. Per-employee problems become
// warnings; the batch always runs to the end.
func (s *Service) AutoConfigurePrimaryEvaluators(ctx context.Context, periodID, createdBy string) (AutoConfigureResult, error) {
	enrollments, err := s.org.ListEnrolled(ctx, periodID)
	if err != nil {
		return AutoConfigureResult{}, err
	}

	var result AutoConfigureResult
	for _, enrollment := range enrollments {
		if enrollment.Excluded {
			continue
		}
		employee, err := s.org.GetEmployee(ctx, enrollment.EmployeeID)
		if err != nil {
			result.FailureCount++
			result.Warnings = append(result.Warnings, fmt.Sprintf("employee %s: %v", enrollment.EmployeeID, err))
			continue
		}
		if employee.ManagerID == nil || *employee.ManagerID == "" {
			result.FailureCount++
			result.Warnings = append(result.Warnings, fmt.Sprintf("employee %s: %v", employee.ID, ErrNoManager))
			continue
		}
		if _, err := s.ConfigurePrimaryEvaluator(ctx, employee.ID, periodID, *employee.ManagerID, createdBy); err != nil {
			result.FailureCount++
			result.Warnings = append(result.Warnings, fmt.Sprintf("employee %s: %v", employee.ID, err))
			slog.Warn("auto primary evaluator configuration failed", "employeeId", employee.ID, "err", err)
			continue
		}
		result.SuccessCount++
	}
	return result, nil
}

func (s *Service) BulkConfigurePrimaryEvaluators(ctx context.Context, periodID string, items []BulkItem, createdBy string) BulkResult {
	return runBulk(items, func(item BulkItem) (string, error) {
		result, err := s.ConfigurePrimaryEvaluator(ctx, item.EmployeeID, periodID, item.EvaluatorID, createdBy)
		return result.MappingID, err
	})
}

func (s *Service) BulkConfigureSecondaryEvaluators(ctx context.Context, periodID string, items []BulkItem, createdBy string) BulkResult {
	return runBulk(items, func(item BulkItem) (string, error) {
		result, err := s.ConfigureSecondaryEvaluator(ctx, item.EmployeeID, item.WbsItemID, periodID, item.EvaluatorID, createdBy)
		return result.MappingID, err
	})
}

// ValidateEvaluationLine confirms evaluatorID holds the role needed to
// evaluate evaluateeID (for secondary roles, on the given WBS item). A
// missing mapping is a permission boundary, not a lookup miss.
func (s *Service) ValidateEvaluationLine(ctx context.Context, evaluateeID, evaluatorID, wbsItemID, evaluationType string) error {
	line, found, err := s.store.FindLineByType(ctx, evaluationType)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrLineNotFound, evaluationType)
	}

	var wbsFilter *string
	if evaluationType != EvaluatorTypePrimary && wbsItemID != "" {
		wbsFilter = &wbsItemID
	}
	exists, err := s.store.MappingExists(ctx, evaluateeID, evaluatorID, wbsFilter, line.ID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNoEvaluationPermission
	}
	return nil
}

func (s *Service) ListMappingsForEmployee(ctx context.Context, employeeID string) ([]Mapping, error) {
	return s.store.ListMappingsForEmployee(ctx, employeeID)
}
