package table

import (
	"fmt"
	"strings"
	"time"
)

// Column describes one table column over records of type R.
type Column[R any] struct {
	Key    string
	Header string
	// Width is the cell width in terminal cells. Zero sizes the column from
	// its content.
	Width int
	// Value returns the sortable value of the column. A nil Value makes the
	// column unsortable and empty unless Render is set.
	Value func(R) any
	// Render formats the cell. Nil uses FormatValue.
	Render func(v any, r R) string
}

// Sortable reports whether clicking the column's header orders rows.
func (c Column[R]) Sortable() bool {
	return c.Value != nil
}

// Cell returns the display text of the column for r.
func (c Column[R]) Cell(r R) string {
	var v any
	if c.Value != nil {
		v = c.Value(r)
	}
	if c.Render != nil {
		return c.Render(v, r)
	}
	return FormatValue(v)
}

// FormatValue is the default cell formatter.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Local().Format("2006-01-02 15:04")
	case float64:
		return fmt.Sprintf("%.1f", x)
	case float32:
		return fmt.Sprintf("%.1f", x)
	case []string:
		return strings.Join(x, ", ")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func columnByKey[R any](columns []Column[R], key string) (Column[R], bool) {
	for _, c := range columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[R]{}, false
}
