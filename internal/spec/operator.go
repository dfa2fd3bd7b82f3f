package spec

import (
	"fmt"

	"validate-specs/internal/common"
)

// Operator is a binary comparison, applied as "measurement <op> threshold".
type Operator int

const (
	OpInvalid Operator = iota
	OpGE
	OpGT
	OpLT
	OpLE
	OpEQ
	OpNE
)

// ParseOperator converts an operator token to an Operator.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case ">=":
		return OpGE, nil
	case ">":
		return OpGT, nil
	case "<":
		return OpLT, nil
	case "<=":
		return OpLE, nil
	case "==":
		return OpEQ, nil
	case "!=":
		return OpNE, nil
	default:
		return OpInvalid, fmt.Errorf("%q: %w", s, ErrUnknownOperator)
	}
}

// String returns the operator token.
func (o Operator) String() string {
	switch o {
	case OpGE:
		return ">="
	case OpGT:
		return ">"
	case OpLT:
		return "<"
	case OpLE:
		return "<="
	case OpEQ:
		return "=="
	case OpNE:
		return "!="
	default:
		return common.UnknownStr
	}
}

// Holds applies the operator to the result of comparing a measurement with
// a threshold (-1, 0, +1).
func (o Operator) Holds(cmp int) bool {
	switch o {
	case OpGE:
		return cmp >= 0
	case OpGT:
		return cmp > 0
	case OpLT:
		return cmp < 0
	case OpLE:
		return cmp <= 0
	case OpEQ:
		return cmp == 0
	case OpNE:
		return cmp != 0
	default:
		return false
	}
}
