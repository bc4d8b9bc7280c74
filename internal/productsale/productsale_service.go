package productsale

import (
	"context"
	"errors"
	"time"

	"go-payouts/internal/period"
	productsaleerrors "go-payouts/internal/productsale/errors"
	"go-payouts/internal/shared/contextutil"

	"go.uber.org/zap"
)

type Service interface {
	Products(ctx context.Context) ([]Product, error)
	List(ctx context.Context, p period.Period, employeeID string) ([]Sale, error)
	MonthTotals(ctx context.Context, p period.Period) (map[string]int64, error)
	Create(ctx context.Context, req CreateSaleRequest) (Sale, error)
}

// Listener hears about every commission recorded through the service.
type Listener interface {
	ProductSaleRecorded(ctx context.Context, sale Sale)
}

type service struct {
	repo      Repository
	listeners []Listener
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("productsale.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("productsale.service")
	}
	return &service{repo: repo, now: time.Now, logger: l}
}

// NewServiceWithListeners is NewService notifying listeners after each
// successful Create.
func NewServiceWithListeners(repo Repository, listeners []Listener, logger ...*zap.Logger) Service {
	s := NewService(repo, logger...).(*service)
	s.listeners = listeners
	return s
}

func (s *service) unavailable(ctx context.Context, msg string, err error) error {
	s.logger.Error(msg, append(contextutil.LogFields(ctx), zap.Error(err))...)
	return errors.Join(productsaleerrors.ErrUnavailable, err)
}

func (s *service) Products(ctx context.Context) ([]Product, error) {
	products, err := s.repo.FindProducts(ctx)
	if err != nil {
		return nil, s.unavailable(ctx, "load products failed", err)
	}
	return products, nil
}

func (s *service) List(ctx context.Context, p period.Period, employeeID string) ([]Sale, error) {
	sales, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.unavailable(ctx, "load product sales failed", err)
	}
	return Filter(sales, p, employeeID), nil
}

func (s *service) MonthTotals(ctx context.Context, p period.Period) (map[string]int64, error) {
	sales, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.unavailable(ctx, "load product sales failed", err)
	}
	return MonthTotals(sales, p), nil
}

// Create records a commission at the catalog price of the product. The
// percent is bounded to [0, 100] and must end up above zero.
func (s *service) Create(ctx context.Context, req CreateSaleRequest) (Sale, error) {
	percent := ClampPercent(req.Percent.String())
	if !percent.IsPositive() {
		return Sale{}, productsaleerrors.ErrInvalidPercent
	}

	products, err := s.repo.FindProducts(ctx)
	if err != nil {
		return Sale{}, s.unavailable(ctx, "load products failed", err)
	}

	var (
		product Product
		found   bool
	)
	for _, p := range products {
		if p.ID == req.ProductID {
			product, found = p, true
			break
		}
	}
	if !found {
		return Sale{}, productsaleerrors.ErrProductNotFound
	}
	if !product.Price.IsPositive() {
		return Sale{}, productsaleerrors.ErrProductWithoutPrice
	}

	sale, err := s.repo.Create(ctx, Sale{
		EmployeeID:  req.EmployeeID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Percent:     percent,
		Price:       product.Price,
		Payout:      Commission(product.Price, percent),
		CreatedAt:   s.now(),
	})
	if err != nil {
		return Sale{}, s.unavailable(ctx, "create product sale failed", err)
	}
	if sale.ProductName == "" {
		sale.ProductName = product.Name
	}

	s.logger.Info("product sale recorded",
		append(contextutil.LogFields(ctx),
			zap.String("employee_id", sale.EmployeeID),
			zap.String("product_id", sale.ProductID),
			zap.Stringer("payout", sale.Payout),
		)...,
	)

	for _, l := range s.listeners {
		l.ProductSaleRecorded(ctx, sale)
	}
	return sale, nil
}
