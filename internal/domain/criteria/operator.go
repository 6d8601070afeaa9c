package criteria

import "slices"

// Operator is the comparison a criterion applies to its subject value.
type Operator int

// Operator values are persisted; never renumber them.
const (
	OperatorEqual            Operator = 0
	OperatorLessThan         Operator = 1
	OperatorLessThanEqual    Operator = 2
	OperatorGreaterThan      Operator = 3
	OperatorGreaterThanEqual Operator = 4
	OperatorIsSelected       Operator = 10
	OperatorIsNotSelected    Operator = 11
	OperatorIsValid          Operator = 21
	OperatorIsNotValid       Operator = 22
	OperatorContains         Operator = 32
)

// Operator groups offered by the different criterion kinds.
var (
	NumberOperators = []Operator{
		OperatorEqual,
		OperatorLessThan,
		OperatorLessThanEqual,
		OperatorGreaterThan,
		OperatorGreaterThanEqual,
	}
	SelectionOperators = []Operator{OperatorIsSelected, OperatorIsNotSelected}
	ValidOperators     = []Operator{OperatorIsValid, OperatorIsNotValid}
	StringOperators    = []Operator{OperatorEqual, OperatorContains}
)

var operatorNames = map[Operator]string{
	OperatorEqual:            "equal",
	OperatorLessThan:         "less than",
	OperatorLessThanEqual:    "less than equal to",
	OperatorGreaterThan:      "greater than",
	OperatorGreaterThanEqual: "greater than equal to",
	OperatorIsSelected:       "is selected",
	OperatorIsNotSelected:    "is not selected",
	OperatorIsValid:          "is valid",
	OperatorIsNotValid:       "is not valid",
	OperatorContains:         "contains",
}

// String returns the human readable operator name
func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return "unknown"
}

// IsNumber reports whether o compares numbers.
func (o Operator) IsNumber() bool {
	return slices.Contains(NumberOperators, o)
}

// ValueType tells a client how a criterion value is entered.
type ValueType int

const (
	ValueTypeInput          ValueType = 0
	ValueTypeSelect         ValueType = 1
	ValueTypeMultipleSelect ValueType = 2
)
