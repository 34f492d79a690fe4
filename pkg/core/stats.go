package core

// DashboardStats holds the aggregate counters shown on the dashboard.
type DashboardStats struct {
	TotalConnections int   `json:"totalConnections"`
	TotalTables      int   `json:"totalTables"`
	TotalRows        int64 `json:"totalRows"`
	HealthScore      int   `json:"healthScore"`
}

// ComputeStats derives dashboard counters from the connection and table sets.
func ComputeStats(conns []DatabaseConnection, tables []TableSummary, health int) DashboardStats {
	var rows int64
	for _, t := range tables {
		rows += t.RowCount
	}
	return DashboardStats{
		TotalConnections: len(conns),
		TotalTables:      len(tables),
		TotalRows:        rows,
		HealthScore:      health,
	}
}
