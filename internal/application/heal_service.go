package application

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/scoutlint/scout/internal/domain"
	"github.com/scoutlint/scout/internal/domain/correlate"
)

// HealService hands filtered findings to an auto-fixer.
type HealService struct {
	healer domain.Healer
	logger hclog.Logger
}

func NewHealService(healer domain.Healer, logger hclog.Logger) *HealService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &HealService{healer: healer, logger: logger.Named("heal")}
}

// Apply fixes every distinct finding. It does nothing when there is nothing
// to fix.
func (s *HealService) Apply(projectPath string, findings []domain.Finding) (int, error) {
	unique := correlate.Unique(findings)
	if len(unique) == 0 {
		s.logger.Info("nothing to heal")
		return 0, nil
	}

	s.logger.Info("healing findings", "count", len(unique))
	if err := s.healer.Heal(projectPath, unique); err != nil {
		return 0, fmt.Errorf("applying fixes: %w", err)
	}
	return len(unique), nil
}
