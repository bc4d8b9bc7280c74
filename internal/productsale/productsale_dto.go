package productsale

import "go-payouts/internal/shared/jsonx"

// CreateSaleRequest records a commission. Percent is read like the rate
// inputs: anything but digits, '.' and '-' is ignored, and it is bounded to
// [0, 100].
type CreateSaleRequest struct {
	EmployeeID string     `json:"employee_id" binding:"required"`
	ProductID  string     `json:"product_id" binding:"required"`
	Percent    jsonx.Text `json:"percent"`
}

type ListSalesQuery struct {
	EmployeeID string `form:"employee_id"`
}

type SaleList struct {
	Sales []Sale `json:"sales"`
	Total int64  `json:"total"`
}
