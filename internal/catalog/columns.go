package catalog

import (
	"strings"

	"github.com/leapstack-labs/datapulse/pkg/core"
)

// SynthesizeColumns returns placeholder columns for a table that has no
// recorded column metadata.
func SynthesizeColumns(tableName string) []core.ColumnDetail {
	cols := []core.ColumnDetail{
		{Name: "ID", Type: "VARCHAR(36)", IsPrimaryKey: true, Description: "Unique identifier"},
		{Name: "CREATED_AT", Type: "TIMESTAMP_NTZ", Description: "Record creation timestamp"},
		{Name: "UPDATED_AT", Type: "TIMESTAMP_NTZ", IsNullable: true, Description: "Last update timestamp"},
	}

	if strings.EqualFold(tableName, "CUSTOMERS") {
		return append(cols,
			core.ColumnDetail{Name: "EMAIL", Type: "VARCHAR(255)", Description: "Customer email address (PII)"},
			core.ColumnDetail{Name: "FULL_NAME", Type: "VARCHAR(100)", IsNullable: true, Description: "Full name"},
			core.ColumnDetail{Name: "STATUS", Type: "VARCHAR(20)", Description: "Account status"},
		)
	}

	return append(cols,
		core.ColumnDetail{Name: "AMOUNT", Type: "DECIMAL(10,2)", Description: "Order total amount"},
		core.ColumnDetail{Name: "STATUS", Type: "VARCHAR(20)", Description: "Order status"},
	)
}
