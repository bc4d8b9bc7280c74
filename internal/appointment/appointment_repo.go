package appointment

import (
	"context"
	"fmt"

	"go-payouts/internal/remote"
)

type Repository interface {
	FindAll(ctx context.Context) ([]Appointment, error)
	FindServices(ctx context.Context) ([]Service, error)
}

type repository struct {
	fetcher         remote.PageFetcher
	appointmentsURL string
	servicesURL     string
}

func NewRepository(fetcher remote.PageFetcher, appointmentsURL, servicesURL string) Repository {
	return &repository{
		fetcher:         fetcher,
		appointmentsURL: appointmentsURL,
		servicesURL:     servicesURL,
	}
}

func (r *repository) FindAll(ctx context.Context) ([]Appointment, error) {
	apps, err := remote.LoadAll[Appointment](ctx, r.fetcher, r.appointmentsURL)
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	return apps, nil
}

func (r *repository) FindServices(ctx context.Context) ([]Service, error) {
	raw, err := remote.LoadAll[RemoteService](ctx, r.fetcher, r.servicesURL)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	return NormalizeServices(raw), nil
}
