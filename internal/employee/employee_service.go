package employee

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	employeeerrors "go-payouts/internal/employee/errors"
	"go-payouts/internal/remote"
	"go-payouts/internal/shared/contextutil"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const DirectoryCacheKey = "employees:directory"

type Service interface {
	GetAll(ctx context.Context) ([]Employee, error)
	Invalidate(ctx context.Context) error
}

type service struct {
	fetcher  remote.PageFetcher
	startURL string
	rdb      *redis.Client
	ttl      time.Duration
	sf       *singleflight.Group
	logger   *zap.Logger
}

// NewService builds the directory over the backend employees list. rdb may
// be nil, in which case every call goes to the backend (still collapsed by
// singleflight).
func NewService(
	fetcher remote.PageFetcher,
	startURL string,
	rdb *redis.Client,
	ttl time.Duration,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		fetcher:  fetcher,
		startURL: startURL,
		rdb:      rdb,
		ttl:      ttl,
		sf:       &singleflight.Group{},
		logger:   l,
	}
}

func (s *service) GetAll(ctx context.Context) ([]Employee, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, DirectoryCacheKey).Result(); err == nil {
			var emps []Employee
			if json.Unmarshal([]byte(cached), &emps) == nil {
				return emps, nil
			}
		}
	}

	v, err, _ := s.sf.Do(DirectoryCacheKey, func() (interface{}, error) {
		raw, err := remote.LoadAll[RemoteEmployee](ctx, s.fetcher, s.startURL)
		if err != nil {
			s.logger.Error("load employees failed", append(contextutil.LogFields(ctx), zap.Error(err))...)
			return nil, errors.Join(employeeerrors.ErrDirectoryUnavailable, err)
		}

		emps := Normalize(raw)

		if s.rdb != nil && s.ttl > 0 {
			if payload, err := json.Marshal(emps); err == nil {
				if err := s.rdb.Set(ctx, DirectoryCacheKey, payload, s.ttl).Err(); err != nil {
					s.logger.Warn("cache employee directory failed", zap.Error(err))
				}
			}
		}

		return emps, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]Employee), nil
}

func (s *service) Invalidate(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}
	if err := s.rdb.Del(ctx, DirectoryCacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate employee directory cache",
			zap.Error(err),
			zap.String("key", DirectoryCacheKey),
		)
		return err
	}
	return nil
}
