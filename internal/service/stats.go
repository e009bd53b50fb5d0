package service

import (
	"CaseKeeper/internal/model"
	"CaseKeeper/internal/repo"
	"CaseKeeper/internal/stats"
	"context"
)

// StatsService сводка для дашборда, считается заново на каждый вызов.
type StatsService struct {
	criminals repo.CriminalRepository
	firs      repo.FirRepository
}

func NewStatsService(store repo.Store) *StatsService {
	return &StatsService{criminals: store.Criminals(), firs: store.Firs()}
}

func (s *StatsService) Statistics(ctx context.Context) (model.Statistics, error) {
	criminals, err := s.criminals.List(ctx)
	if err != nil {
		return model.Statistics{}, err
	}
	firs, err := s.firs.List(ctx)
	if err != nil {
		return model.Statistics{}, err
	}
	return stats.Compute(criminals, len(firs)), nil
}
