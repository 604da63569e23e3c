// Package rows stores the schemaless dashboard tables. Rows are exchanged
// as JSON objects; only the columns a table declares writable are ever
// taken from client input, and the owner column is always forced to the
// caller.
package rows

import (
	"fmt"

	"github.com/dmitrijs2005/securepay/internal/common"
)

// Table describes one remote table.
type Table struct {
	Name string
	// Columns are the client-writable columns, in statement order.
	Columns []string
	// OrderBy is the ORDER BY clause of Query.
	OrderBy string
	// IDIsOwner marks one-row-per-user tables whose primary key is the
	// owner id.
	IDIsOwner bool
}

var tables = map[string]Table{
	common.TableTransactions: {
		Name:    common.TableTransactions,
		Columns: []string{"type", "amount", "currency", "category", "merchant", "purpose", "note", "icon"},
		OrderBy: "t.created_at DESC, t.id",
	},
	common.TableScheduledPayments: {
		Name: common.TableScheduledPayments,
		Columns: []string{"payee", "category", "amount", "currency", "schedule_type", "interval_value",
			"next_run", "active", "note", "icon", "updated_at"},
		OrderBy: "t.next_run ASC NULLS LAST, t.created_at",
	},
	common.TableProfiles: {
		Name:      common.TableProfiles,
		Columns:   []string{"email", "full_name", "display_name", "phone", "address", "updated_at"},
		OrderBy:   "t.id",
		IDIsOwner: true,
	},
}

// Lookup returns the table named name.
func Lookup(name string) (Table, error) {
	t, ok := tables[name]
	if !ok {
		return Table{}, fmt.Errorf("%w: %q", common.ErrUnknownTable, name)
	}
	return t, nil
}
