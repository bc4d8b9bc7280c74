package productsale_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-payouts/internal/productsale"
	"go-payouts/internal/remote"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

func newRepository(t *testing.T, routes map[string]string, calls *[]call) productsale.Repository {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		*calls = append(*calls, call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})

		out, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
		}
		_, _ = io.WriteString(w, out)
	}))
	t.Cleanup(srv.Close)

	client, err := remote.NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)
	return productsale.NewRepository(client, "/barbershop/product-sale-payouts", "/main/products/list/", 5000)
}

func TestRepository_FindAll(t *testing.T) {
	var calls []call
	repo := newRepository(t, map[string]string{
		"GET /barbershop/product-sale-payouts/": `{"results":[
			{"id":1,"employee":{"id":7},"product":3,"percent":"10","price":"1500.00","payout_amount":"150.00","created_at":"2025-03-02T10:00:00Z"},
			{"id":2,"employee":"8","product":4,"percent":5,"price":200,"payout_amount":10,"created_at":null}
		],"next":null}`,
	}, &calls)

	sales, err := repo.FindAll(context.Background())

	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, "7", sales[0].EmployeeID)
	assert.Equal(t, "3", sales[0].ProductID)
	assert.Equal(t, "150", sales[0].Payout.String())
	assert.False(t, sales[0].CreatedAt.IsZero())
	assert.True(t, sales[1].CreatedAt.IsZero())
	assert.Equal(t, "page_size=5000", calls[0].Query)
}

func TestRepository_FindAll_Failure(t *testing.T) {
	var calls []call
	repo := newRepository(t, map[string]string{}, &calls)

	sales, err := repo.FindAll(context.Background())

	assert.Error(t, err)
	assert.Nil(t, sales)
}

func TestRepository_FindProducts(t *testing.T) {
	var calls []call
	repo := newRepository(t, map[string]string{
		"GET /main/products/list/": `[
			{"id":3,"name":"Pomade","price":"1500"},
			{"id":4,"product_name":"Shampoo","price":null},
			{"id":5,"title":"","price":"80"},
			{"name":"No id"}
		]`,
	}, &calls)

	products, err := repo.FindProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "3", products[0].ID)
	assert.Equal(t, "Pomade", products[0].Name)
	assert.True(t, products[0].Price.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, "Shampoo", products[1].Name)
	assert.True(t, products[1].Price.IsZero())
	assert.Equal(t, "Untitled", products[2].Name)
}

func TestRepository_Create(t *testing.T) {
	var calls []call
	repo := newRepository(t, map[string]string{
		"POST /barbershop/product-sale-payouts/": `{"id":11,"employee":7,"product":3,"payout_amount":"150.00","created_at":"2025-03-02T10:00:00Z"}`,
	}, &calls)

	sale, err := repo.Create(context.Background(), productsale.Sale{
		EmployeeID: "7",
		ProductID:  "3",
		Percent:    decimal.NewFromInt(10),
		Price:      decimal.NewFromInt(1500),
		Payout:     decimal.NewFromInt(150),
	})

	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{"employee": "7", "product": "3", "percent": "10", "price": "1500"}, calls[0].Body)
	assert.Equal(t, "11", sale.ID)
	assert.Equal(t, "150", sale.Payout.String())
	assert.Equal(t, "10", sale.Percent.String())
	assert.Equal(t, "1500", sale.Price.String())
}
