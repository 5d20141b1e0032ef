package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/seed"
)

// Stats is the admin overview of the target database.
type Stats struct {
	*seed.Report
	PublicRecipes  int64 `json:"public_recipes"`
	PrivateRecipes int64 `json:"private_recipes"`
	Healthy        bool  `json:"healthy"`
}

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

func (s *StatsService) GetStats(ctx context.Context) (*Stats, error) {
	report, err := seed.Verify(ctx, s.db)
	if err != nil {
		return nil, err
	}
	stats := &Stats{Report: report, Healthy: report.OK()}
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("is_private = ?", false).Count(&stats.PublicRecipes).Error; err != nil {
		return nil, err
	}
	stats.PrivateRecipes = report.Counts["recipes"] - stats.PublicRecipes
	return stats, nil
}
