package productsale_test

import (
	"context"
	"errors"
	"testing"

	"go-payouts/internal/productsale"
	productsaleerrors "go-payouts/internal/productsale/errors"
	"go-payouts/internal/shared/jsonx"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	findAllFn      func(ctx context.Context) ([]productsale.Sale, error)
	findProductsFn func(ctx context.Context) ([]productsale.Product, error)
	createFn       func(ctx context.Context, sale productsale.Sale) (productsale.Sale, error)
}

func (f *fakeRepo) FindAll(ctx context.Context) ([]productsale.Sale, error) {
	return f.findAllFn(ctx)
}

func (f *fakeRepo) FindProducts(ctx context.Context) ([]productsale.Product, error) {
	return f.findProductsFn(ctx)
}

func (f *fakeRepo) Create(ctx context.Context, sale productsale.Sale) (productsale.Sale, error) {
	return f.createFn(ctx, sale)
}

type recordingListener struct {
	sales []productsale.Sale
}

func (l *recordingListener) ProductSaleRecorded(_ context.Context, sale productsale.Sale) {
	l.sales = append(l.sales, sale)
}

func catalog(context.Context) ([]productsale.Product, error) {
	return []productsale.Product{
		{ID: "3", Name: "Pomade", Price: decimal.NewFromInt(1500)},
		{ID: "4", Name: "Sample", Price: decimal.Zero},
	}, nil
}

func TestService_Create(t *testing.T) {
	var sent productsale.Sale
	repo := &fakeRepo{
		findProductsFn: catalog,
		createFn: func(_ context.Context, sale productsale.Sale) (productsale.Sale, error) {
			sent = sale
			sale.ID = "11"
			return sale, nil
		},
	}
	listener := &recordingListener{}
	svc := productsale.NewServiceWithListeners(repo, []productsale.Listener{listener})

	sale, err := svc.Create(context.Background(), productsale.CreateSaleRequest{
		EmployeeID: "7",
		ProductID:  "3",
		Percent:    jsonx.Text("10 %"),
	})

	require.NoError(t, err)
	assert.Equal(t, "11", sale.ID)
	assert.Equal(t, "10", sent.Percent.String())
	assert.Equal(t, "1500", sent.Price.String())
	assert.Equal(t, "150", sent.Payout.String())
	assert.Equal(t, "Pomade", sale.ProductName)
	assert.False(t, sent.CreatedAt.IsZero())
	require.Len(t, listener.sales, 1)
	assert.Equal(t, "11", listener.sales[0].ID)
}

func TestService_Create_PercentIsClamped(t *testing.T) {
	var sent productsale.Sale
	repo := &fakeRepo{
		findProductsFn: catalog,
		createFn: func(_ context.Context, sale productsale.Sale) (productsale.Sale, error) {
			sent = sale
			return sale, nil
		},
	}
	svc := productsale.NewService(repo)

	_, err := svc.Create(context.Background(), productsale.CreateSaleRequest{EmployeeID: "7", ProductID: "3", Percent: "250"})

	require.NoError(t, err)
	assert.Equal(t, "100", sent.Percent.String())
	assert.Equal(t, "1500", sent.Payout.String())
}

func TestService_Create_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		req     productsale.CreateSaleRequest
		wantErr error
	}{
		{"zero percent", productsale.CreateSaleRequest{EmployeeID: "7", ProductID: "3", Percent: "0"}, productsaleerrors.ErrInvalidPercent},
		{"negative percent", productsale.CreateSaleRequest{EmployeeID: "7", ProductID: "3", Percent: "-4"}, productsaleerrors.ErrInvalidPercent},
		{"unknown product", productsale.CreateSaleRequest{EmployeeID: "7", ProductID: "99", Percent: "10"}, productsaleerrors.ErrProductNotFound},
		{"product without price", productsale.CreateSaleRequest{EmployeeID: "7", ProductID: "4", Percent: "10"}, productsaleerrors.ErrProductWithoutPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{
				findProductsFn: catalog,
				createFn: func(context.Context, productsale.Sale) (productsale.Sale, error) {
					t.Fatal("create must not be called")
					return productsale.Sale{}, nil
				},
			}
			svc := productsale.NewService(repo)

			_, err := svc.Create(context.Background(), tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_Create_BackendDown(t *testing.T) {
	listener := &recordingListener{}
	repo := &fakeRepo{
		findProductsFn: catalog,
		createFn: func(context.Context, productsale.Sale) (productsale.Sale, error) {
			return productsale.Sale{}, errors.New("connection refused")
		},
	}
	svc := productsale.NewServiceWithListeners(repo, []productsale.Listener{listener})

	_, err := svc.Create(context.Background(), productsale.CreateSaleRequest{EmployeeID: "7", ProductID: "3", Percent: "10"})

	assert.ErrorIs(t, err, productsaleerrors.ErrUnavailable)
	assert.Empty(t, listener.sales)
}

func TestService_ListAndTotals(t *testing.T) {
	repo := &fakeRepo{findAllFn: func(context.Context) ([]productsale.Sale, error) {
		return []productsale.Sale{
			{ID: "1", EmployeeID: "A", Payout: decimal.NewFromInt(100), CreatedAt: at("2025-03-02T10:00:00Z")},
			{ID: "2", EmployeeID: "B", Payout: decimal.NewFromInt(40), CreatedAt: at("2025-03-03T10:00:00Z")},
			{ID: "3", EmployeeID: "A", Payout: decimal.NewFromInt(5), CreatedAt: at("2025-04-03T10:00:00Z")},
		}, nil
	}}
	svc := productsale.NewService(repo)

	sales, err := svc.List(context.Background(), march, "A")
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "1", sales[0].ID)

	totals, err := svc.MonthTotals(context.Background(), march)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"A": 100, "B": 40}, totals)
}

func TestService_MonthTotals_BackendDown(t *testing.T) {
	repo := &fakeRepo{findAllFn: func(context.Context) ([]productsale.Sale, error) {
		return nil, errors.New("timeout")
	}}
	svc := productsale.NewService(repo)

	totals, err := svc.MonthTotals(context.Background(), march)

	assert.ErrorIs(t, err, productsaleerrors.ErrUnavailable)
	assert.Nil(t, totals)
}
