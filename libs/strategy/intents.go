package strategy

import "fmt"

// Row is one (qty, price) pair of an intent table.
type Row [2]float64

func (r Row) Qty() float64   { return r[0] }
func (r Row) Price() float64 { return r[1] }

// Table is a normalized list of (qty, price) rows. A nil Table means the
// intent was never set; a non-nil, empty Table is distinct from that and
// means the intent was explicitly cleared. Callers must not conflate the
// two when detecting mutation (see Equal).
type Table []Row

// Normalize coerces value into a Table, accepting the shapes the original
// strategy base class accepted when a user assigned buy/sell/stop_loss/
// take_profit: a single pair, a slice of pairs, or an already-normalized
// table. name is used only to build a descriptive error.
func Normalize(value any, name string) (Table, error) {
	if value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case Table:
		return normalizeRows(v, name)
	case []Row:
		return normalizeRows(Table(v), name)
	case Row:
		return normalizeRows(Table{v}, name)
	case [2]float64:
		return normalizeRows(Table{Row(v)}, name)
	case [][2]float64:
		rows := make(Table, len(v))
		for i, pair := range v {
			rows[i] = Row(pair)
		}
		return normalizeRows(rows, name)
	default:
		return nil, fmt.Errorf("%s: %w: unsupported type %T", name, ErrInvalidShape, value)
	}
}

func normalizeRows(rows Table, name string) (Table, error) {
	out := make(Table, len(rows))
	for i, row := range rows {
		qty, price := row.Qty(), row.Price()
		if price < 0 {
			return nil, fmt.Errorf("%s: %w: negative price at row %d", name, ErrInvalidShape, i)
		}
		if qty < 0 {
			qty = -qty
		}
		out[i] = Row{qty, price}
	}
	return out, nil
}

// roundedFor rounds every row of t against the broker's tick/lot-size
// hooks, using ref (the first row's price of the table being set) to
// resolve the correct tick size. Only applied in live mode.
func roundedFor(t Table, broker Broker, ref float64) Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for i, row := range t {
		out[i] = Row{broker.RoundQty(ref, row.Qty()), broker.RoundPrice(ref, row.Price())}
	}
	return out
}

// Equal reports whether two tables are structurally identical: same
// length, same rows in the same order, exact float equality (no epsilon).
// This is intentionally strict — the reconciler (C5) uses it to detect
// any user mutation between ticks, including a no-op reassignment of the
// same values to a differently-ordered table.
func Equal(a, b Table) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// VWAP returns the volume-weighted average price over t's rows, weighting
// each row's price by its (absolute) quantity. Returns 0 for a nil or
// empty table.
func VWAP(t Table) float64 {
	var qtySum, weighted float64
	for _, row := range t {
		q := row.Qty()
		if q < 0 {
			q = -q
		}
		qtySum += q
		weighted += q * row.Price()
	}
	if qtySum == 0 {
		return 0
	}
	return weighted / qtySum
}

// TotalQty returns the sum of absolute quantities across t's rows.
func TotalQty(t Table) float64 {
	var sum float64
	for _, row := range t {
		q := row.Qty()
		if q < 0 {
			q = -q
		}
		sum += q
	}
	return sum
}
