package dto

// DashboardStatsDTO respuesta de GET /api/dashboard/stats.
type DashboardStatsDTO struct {
	TotalItems      int `json:"total_items"`
	LowStockItems   int `json:"low_stock_items"` // stock < 10
	TotalCategories int `json:"total_categories"`
	TotalSuppliers  int `json:"total_suppliers"`
	Transactions30d int `json:"transactions_30d"`
	Incoming30d     int `json:"incoming_30d"`
	Outgoing30d     int `json:"outgoing_30d"`
}

// MovementPointDTO cantidades movidas en un día.
type MovementPointDTO struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Incoming int    `json:"incoming"`
	Outgoing int    `json:"outgoing"`
}

// MovementChartDTO respuesta de GET /api/dashboard/movement (últimos 30 días, días sin movimiento en 0).
type MovementChartDTO struct {
	From   string             `json:"from"`
	To     string             `json:"to"`
	Points []MovementPointDTO `json:"points"`
}
