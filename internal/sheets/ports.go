// Package sheets mirrors transactions into a spreadsheet, one row each.
package sheets

import (
	"context"

	"centavo/internal/core"
)

// RowWriter is the outbound port used by the export worker.
type RowWriter interface {
	AppendRow(ctx context.Context, row Row) error
	// DeleteRow removes the row for transactionID. A missing row is not an
	// error.
	DeleteRow(ctx context.Context, transactionID string) error
}

// Row is one exported transaction. Column order follows Values.
type Row struct {
	TransactionID string
	Date          string
	Type          string
	Amount        string
	Currency      string
	Description   string
	Category      string
	UserID        string
}

// Header is the first row of a freshly created sheet.
var Header = []any{"id", "date", "type", "amount", "currency", "description", "category", "user_id"}

// RowFromTransaction flattens t. Uncategorised transactions get an empty
// category cell.
func RowFromTransaction(t core.Transaction) Row {
	return Row{
		TransactionID: t.ID,
		Date:          t.Date.String(),
		Type:          string(t.Type),
		Amount:        t.Amount.String(),
		Currency:      t.Currency,
		Description:   t.Description,
		Category:      t.CategoryName,
		UserID:        t.UserID,
	}
}

// Values returns the cells in sheet column order A..H.
func (r Row) Values() []any {
	return []any{r.TransactionID, r.Date, r.Type, r.Amount, r.Currency, r.Description, r.Category, r.UserID}
}
