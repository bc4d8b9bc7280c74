package productsale

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go-payouts/internal/period"
	"go-payouts/internal/remote"
	"go-payouts/internal/shared/jsonx"
)

type Repository interface {
	FindAll(ctx context.Context) ([]Sale, error)
	FindProducts(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, sale Sale) (Sale, error)
}

type repository struct {
	backend      remote.Backend
	salesPath    string
	productsPath string
	pageSize     int
}

// NewRepository serves commissions from the collection at salesPath (for
// example "/barbershop/product-sale-payouts/") and the product catalog at
// productsPath.
func NewRepository(backend remote.Backend, salesPath, productsPath string, pageSize int) Repository {
	return &repository{
		backend:      backend,
		salesPath:    withSlash(salesPath),
		productsPath: withSlash(productsPath),
		pageSize:     pageSize,
	}
}

func withSlash(path string) string {
	if !strings.HasSuffix(path, "/") {
		return path + "/"
	}
	return path
}

type remoteSale struct {
	ID           jsonx.Text `json:"id"`
	Employee     jsonx.Text `json:"employee"`
	EmployeeName jsonx.Text `json:"employee_name"`
	Product      jsonx.Text `json:"product"`
	ProductName  jsonx.Text `json:"product_name"`
	Percent      jsonx.Text `json:"percent"`
	Price        jsonx.Text `json:"price"`
	PayoutAmount jsonx.Text `json:"payout_amount"`
	CreatedAt    jsonx.Text `json:"created_at"`
}

func (r remoteSale) toSale() Sale {
	s := Sale{
		ID:           r.ID.Trimmed(),
		EmployeeID:   r.Employee.Trimmed(),
		EmployeeName: r.EmployeeName.Trimmed(),
		ProductID:    r.Product.Trimmed(),
		ProductName:  r.ProductName.Trimmed(),
		Percent:      jsonx.Decimal(r.Percent),
		Price:        jsonx.Decimal(r.Price),
		Payout:       jsonx.Decimal(r.PayoutAmount),
	}
	if t, ok := period.ParseTimestamp(r.CreatedAt.Trimmed()); ok {
		s.CreatedAt = t
	}
	return s
}

type remoteProduct struct {
	ID          jsonx.Text `json:"id"`
	Name        jsonx.Text `json:"name"`
	ProductName jsonx.Text `json:"product_name"`
	Title       jsonx.Text `json:"title"`
	Price       jsonx.Text `json:"price"`
}

type createPayload struct {
	Employee string `json:"employee"`
	Product  string `json:"product"`
	Percent  string `json:"percent"`
	Price    string `json:"price"`
}

func (r *repository) FindAll(ctx context.Context) ([]Sale, error) {
	start, err := r.backend.URL(r.salesPath, url.Values{
		"page_size": {strconv.Itoa(r.pageSize)},
	})
	if err != nil {
		return nil, err
	}

	items, err := remote.LoadAll[remoteSale](ctx, r.backend, start)
	if err != nil {
		return nil, fmt.Errorf("load product sales: %w", err)
	}

	sales := make([]Sale, 0, len(items))
	for _, item := range items {
		sales = append(sales, item.toSale())
	}
	return sales, nil
}

func (r *repository) FindProducts(ctx context.Context) ([]Product, error) {
	start, err := r.backend.URL(r.productsPath, nil)
	if err != nil {
		return nil, err
	}

	items, err := remote.LoadAll[remoteProduct](ctx, r.backend, start)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	products := make([]Product, 0, len(items))
	for _, item := range items {
		id := item.ID.Trimmed()
		if id == "" {
			continue
		}
		name := jsonx.FirstNonEmpty(item.Name, item.ProductName, item.Title).Trimmed()
		if name == "" {
			name = untitledProduct
		}
		products = append(products, Product{ID: id, Name: name, Price: jsonx.Decimal(item.Price)})
	}
	return products, nil
}

// Create posts sale and returns the record the backend stored. The backend
// computes payout_amount; when it leaves it out the local commission is kept.
func (r *repository) Create(ctx context.Context, sale Sale) (Sale, error) {
	body := createPayload{
		Employee: sale.EmployeeID,
		Product:  sale.ProductID,
		Percent:  sale.Percent.String(),
		Price:    sale.Price.String(),
	}

	var resp remoteSale
	if err := r.backend.Post(ctx, r.salesPath, body, &resp); err != nil {
		return Sale{}, fmt.Errorf("create product sale: %w", err)
	}

	stored := resp.toSale()
	if stored.EmployeeID == "" {
		stored.EmployeeID = sale.EmployeeID
	}
	if stored.ProductID == "" {
		stored.ProductID = sale.ProductID
	}
	if resp.Percent.Trimmed() == "" {
		stored.Percent = sale.Percent
	}
	if resp.Price.Trimmed() == "" {
		stored.Price = sale.Price
	}
	if resp.PayoutAmount.Trimmed() == "" {
		stored.Payout = sale.Payout
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = sale.CreatedAt
	}
	return stored, nil
}
