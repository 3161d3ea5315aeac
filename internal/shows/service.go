package shows

import (
	"context"
	"fmt"
	"strings"

	"showtix/internal/shared/constants"
	"showtix/pkg/cache"
	"showtix/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	// SetCacheService injects the optional listing cache; the service works
	// without it.
	SetCacheService(cacheService cache.Service)

	CreateShow(ctx context.Context, req CreateShowRequest) (*ShowResponse, error)
	GetShowByID(ctx context.Context, id uuid.UUID) (*ShowResponse, error)
	ListShows(ctx context.Context) ([]ShowResponse, error)

	// InvalidateListCache drops the cached listing. The booking engine calls
	// this after any ledger mutation so availability never lags a commit by
	// more than one read.
	InvalidateListCache(ctx context.Context)
}

type service struct {
	repo         Repository
	cacheService cache.Service
	log          *logger.Logger
}

func NewService(repo Repository) Service {
	return &service{repo: repo, log: logger.GetDefault()}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) CreateShow(ctx context.Context, req CreateShowRequest) (*ShowResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if req.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: start_time is required", ErrInvalidInput)
	}
	if req.TotalSeats <= 0 {
		return nil, fmt.Errorf("%w: total_seats must be greater than zero", ErrInvalidInput)
	}

	show := &Show{
		Name:       strings.TrimSpace(req.Name),
		StartTime:  req.StartTime,
		TotalSeats: req.TotalSeats,
	}

	if err := s.repo.Create(ctx, show); err != nil {
		return nil, err
	}

	s.InvalidateListCache(ctx)
	s.log.LogShowCreated(ctx, show.ID.String(), show.TotalSeats)

	resp := show.ToResponse()
	return &resp, nil
}

func (s *service) GetShowByID(ctx context.Context, id uuid.UUID) (*ShowResponse, error) {
	show, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := show.ToResponse()
	return &resp, nil
}

func (s *service) ListShows(ctx context.Context) ([]ShowResponse, error) {
	if s.cacheService == nil {
		return s.fetchShows(ctx)
	}

	var cached []ShowResponse
	err := s.cacheService.GetOrSet(ctx, constants.CACHE_KEY_SHOWS_LIST, constants.TTL_SHOWS_LIST,
		func() (interface{}, error) {
			return s.fetchShows(ctx)
		}, &cached)
	if err != nil {
		// Cache layer trouble never fails the request; read through.
		return s.fetchShows(ctx)
	}
	return cached, nil
}

func (s *service) fetchShows(ctx context.Context) ([]ShowResponse, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]ShowResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, rows[i].ToResponse())
	}
	return responses, nil
}

func (s *service) InvalidateListCache(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	_ = s.cacheService.Delete(ctx, constants.CACHE_KEY_SHOWS_LIST)
}
