package service

import (
	"CaseKeeper/internal/model"
	"CaseKeeper/internal/repo"
	"CaseKeeper/internal/search"
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var recordsCreated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "casekeeper",
		Name:      "records_created_total",
		Help:      "Total number of records created, by kind.",
	},
	[]string{"kind"},
)

// RecordService карточки фигурантов и FIR.
type RecordService struct {
	criminals repo.CriminalRepository
	firs      repo.FirRepository
	logger    *zap.SugaredLogger
}

func NewRecordService(store repo.Store, logger *zap.SugaredLogger) *RecordService {
	return &RecordService{criminals: store.Criminals(), firs: store.Firs(), logger: logger}
}

// ListCriminals все карточки с поиском и фильтрами.
func (s *RecordService) ListCriminals(ctx context.Context, query string, filters search.Filters) ([]model.CriminalRecord, error) {
	list, err := s.criminals.List(ctx)
	if err != nil {
		return nil, err
	}
	return search.Criminals(list, query, filters), nil
}

func (s *RecordService) GetCriminal(ctx context.Context, id string) (*model.CriminalRecord, error) {
	return s.criminals.Get(ctx, id)
}

func (s *RecordService) CreateCriminal(ctx context.Context, d model.CriminalDraft) (*model.CriminalRecord, error) {
	c, err := s.criminals.Insert(ctx, d)
	if err != nil {
		return nil, err
	}
	recordsCreated.WithLabelValues("criminal").Inc()
	s.logger.Infow("criminal record created", "id", c.ID, "fir_number", c.FirNumber)
	return c, nil
}

func (s *RecordService) UpdateCriminal(ctx context.Context, id string, p model.CriminalPatch) (*model.CriminalRecord, error) {
	return s.criminals.Update(ctx, id, p)
}

func (s *RecordService) DeleteCriminal(ctx context.Context, id string) (bool, error) {
	ok, err := s.criminals.Delete(ctx, id)
	if err == nil && ok {
		s.logger.Infow("criminal record deleted", "id", id)
	}
	return ok, err
}

// ListFirs все FIR с поиском и фильтрами.
func (s *RecordService) ListFirs(ctx context.Context, query string, filters search.Filters) ([]model.FirRecord, error) {
	list, err := s.firs.List(ctx)
	if err != nil {
		return nil, err
	}
	return search.Firs(list, query, filters), nil
}

func (s *RecordService) GetFir(ctx context.Context, id string) (*model.FirRecord, error) {
	return s.firs.Get(ctx, id)
}

func (s *RecordService) CreateFir(ctx context.Context, d model.FirDraft) (*model.FirRecord, error) {
	f, err := s.firs.Insert(ctx, d)
	if err != nil {
		return nil, err
	}
	recordsCreated.WithLabelValues("fir").Inc()
	s.logger.Infow("fir created", "id", f.ID, "fir_number", f.FirNumber)
	return f, nil
}

func (s *RecordService) UpdateFir(ctx context.Context, id string, p model.FirPatch) (*model.FirRecord, error) {
	return s.firs.Update(ctx, id, p)
}

func (s *RecordService) DeleteFir(ctx context.Context, id string) (bool, error) {
	return s.firs.Delete(ctx, id)
}
