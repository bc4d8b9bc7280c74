package employee

import "go-payouts/internal/shared/jsonx"

// RemoteEmployee is an item of the backend employees list.
type RemoteEmployee struct {
	ID        jsonx.Text `json:"id"`
	FirstName jsonx.Text `json:"first_name"`
	LastName  jsonx.Text `json:"last_name"`
	Email     jsonx.Text `json:"email"`
	Username  jsonx.Text `json:"username"`
}
