package payroll

import "go-payouts/internal/shared/jsonx"

type EditRateRequest struct {
	EmployeeID string     `json:"employee_id" binding:"required"`
	Mode       string     `json:"mode" binding:"required"`
	Value      jsonx.Text `json:"value"`
}

type ReportRequest struct {
	Date   string `form:"date"`
	Weeks  int    `form:"weeks"`
	Format string `form:"format" binding:"omitempty,oneof=text json"`
}

type JournalRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}
