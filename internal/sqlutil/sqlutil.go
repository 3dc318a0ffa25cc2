// Package sqlutil builds the dynamic parts of SQL statements: SET clauses
// for partial updates and WHERE clauses for optional filters. Placeholders
// are positional ($1, $2, ...), which both PostgreSQL and SQLite accept.
package sqlutil

import (
	"fmt"
	"strings"

	"github.com/ayresjulia/jobly/internal/apperr"
)

// ErrNoData is returned by PartialUpdate when there is nothing to update.
var ErrNoData = apperr.BadRequest("No data")

// Field is one external field name and the value to store for it.
type Field struct {
	Name  string
	Value any
}

// AppendIf appends name=*v to fields when v is non-nil.
func AppendIf[T any](fields []Field, name string, v *T) []Field {
	if v == nil {
		return fields
	}
	return append(fields, Field{Name: name, Value: *v})
}

// Update is a compiled SET clause and its bound values.
// Values[i] binds placeholder $(i+1) in SetCols.
type Update struct {
	SetCols string
	Values  []any
}

// Next is the first placeholder index free for WHERE parameters.
func (u Update) Next() int { return len(u.Values) + 1 }

// PartialUpdate compiles data into a SET clause. Field names are translated
// through jsToSQL; names missing from it are used verbatim as column names.
// Column names are not validated: jsToSQL and field names come from code,
// never from request input.
func PartialUpdate(data []Field, jsToSQL map[string]string) (Update, error) {
	if len(data) == 0 {
		return Update{}, ErrNoData
	}
	cols := make([]string, len(data))
	values := make([]any, len(data))
	for i, f := range data {
		col := jsToSQL[f.Name]
		if col == "" {
			col = f.Name
		}
		cols[i] = fmt.Sprintf(`"%s"=$%d`, col, i+1)
		values[i] = f.Value
	}
	return Update{SetCols: strings.Join(cols, ", "), Values: values}, nil
}

// Where accumulates AND-ed filter conditions.
type Where struct {
	conds []string
	args  []any
}

// Add appends a condition. cond must contain exactly one %d verb, which is
// replaced by the placeholder index bound to arg.
func (w *Where) Add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

// String renders " WHERE a AND b", or "" when there are no conditions.
func (w *Where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// Args returns the bound values in placeholder order.
func (w *Where) Args() []any { return w.args }
