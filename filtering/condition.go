package filtering

import (
	"time"

	"github.com/katalvlaran/golondrina/table"
)

// Op identifies a per-field comparison.
type Op string

// Supported condition operators.
const (
	OpEq      Op = "eq"
	OpNe      Op = "ne"
	OpIn      Op = "in"
	OpNotIn   Op = "not_in"
	OpIsNull  Op = "is_null"
	OpNotNull Op = "not_null"
	OpGt      Op = "gt"
	OpGte     Op = "gte"
	OpLt      Op = "lt"
	OpLte     Op = "lte"
	OpBetween Op = "between"
)

// Condition is one per-field predicate. Construct with the helper
// constructors; zero values of unused operands are ignored by the operator.
//
// Null cells satisfy only IsNull; every other operator rejects them.
type Condition struct {
	Field  string
	Op     Op
	Value  any   // Eq, Ne, Gt, Gte, Lt, Lte
	Values []any // In, NotIn
	Low    any   // Between, inclusive
	High   any   // Between, inclusive
}

// Eq matches cells equal to v.
func Eq(field string, v any) Condition { return Condition{Field: field, Op: OpEq, Value: v} }

// Ne matches non-null cells different from v.
func Ne(field string, v any) Condition { return Condition{Field: field, Op: OpNe, Value: v} }

// In matches cells equal to any of vs.
func In(field string, vs ...any) Condition { return Condition{Field: field, Op: OpIn, Values: vs} }

// NotIn matches non-null cells equal to none of vs.
func NotIn(field string, vs ...any) Condition {
	return Condition{Field: field, Op: OpNotIn, Values: vs}
}

// IsNull matches null cells.
func IsNull(field string) Condition { return Condition{Field: field, Op: OpIsNull} }

// NotNull matches non-null cells.
func NotNull(field string) Condition { return Condition{Field: field, Op: OpNotNull} }

// Gt matches cells strictly greater than v.
func Gt(field string, v any) Condition { return Condition{Field: field, Op: OpGt, Value: v} }

// Gte matches cells greater than or equal to v.
func Gte(field string, v any) Condition { return Condition{Field: field, Op: OpGte, Value: v} }

// Lt matches cells strictly less than v.
func Lt(field string, v any) Condition { return Condition{Field: field, Op: OpLt, Value: v} }

// Lte matches cells less than or equal to v.
func Lte(field string, v any) Condition { return Condition{Field: field, Op: OpLte, Value: v} }

// Between matches cells in [low, high], both bounds inclusive.
func Between(field string, low, high any) Condition {
	return Condition{Field: field, Op: OpBetween, Low: low, High: high}
}

// matches evaluates the condition against one cell.
func (c Condition) matches(cell any) bool {
	if table.IsNull(cell) {
		return c.Op == OpIsNull
	}
	switch c.Op {
	case OpIsNull:
		return false
	case OpNotNull:
		return true
	case OpEq:
		return table.Compare(cell, c.Value) == 0
	case OpNe:
		return table.Compare(cell, c.Value) != 0
	case OpIn:
		return containsValue(c.Values, cell)
	case OpNotIn:
		return !containsValue(c.Values, cell)
	case OpGt:
		return table.Compare(cell, c.Value) > 0
	case OpGte:
		return table.Compare(cell, c.Value) >= 0
	case OpLt:
		return table.Compare(cell, c.Value) < 0
	case OpLte:
		return table.Compare(cell, c.Value) <= 0
	case OpBetween:
		return table.Compare(cell, c.Low) >= 0 && table.Compare(cell, c.High) <= 0
	default:
		return false
	}
}

func containsValue(values []any, cell any) bool {
	for _, v := range values {
		if table.Compare(cell, v) == 0 {
			return true
		}
	}

	return false
}

// TimeMode identifies the relation between a trip and the filter window.
type TimeMode string

// Time filter modes. All windows are half-open [Start, End).
const (
	// StartsWithin keeps trips whose origin time lies in the window.
	StartsWithin TimeMode = "starts_within"

	// EndsWithin keeps trips whose destination time lies in the window.
	EndsWithin TimeMode = "ends_within"

	// Contains keeps trips that lie entirely inside the window.
	Contains TimeMode = "contains"

	// Overlaps keeps trips whose [origin, destination] interval intersects
	// the window.
	Overlaps TimeMode = "overlaps"
)

// TimeFilter keeps trips by the relation of their time span to [Start, End).
type TimeFilter struct {
	Mode  TimeMode
	Start time.Time
	End   time.Time
}

// matches evaluates the filter against one trip's endpoints. A trip with an
// unparseable endpoint needed by the mode is rejected.
func (f TimeFilter) matches(origin, dest any) bool {
	ot, okO := table.AsTime(origin)
	dt, okD := table.AsTime(dest)
	inWindow := func(t time.Time) bool {
		return !t.Before(f.Start) && t.Before(f.End)
	}
	switch f.Mode {
	case StartsWithin:
		return okO && inWindow(ot)
	case EndsWithin:
		return okD && inWindow(dt)
	case Contains:
		return okO && okD && inWindow(ot) && inWindow(dt)
	case Overlaps:
		return okO && okD && ot.Before(f.End) && !dt.Before(f.Start)
	default:
		return false
	}
}
