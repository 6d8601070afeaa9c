// Package expression evaluates the JSONLogic rules of expression criteria.
package expression

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/diegoholiveira/jsonlogic"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/lfs/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// JSONLogicEvaluator implements criteria.ExpressionEvaluator. A rule holds
// when its result is truthy in the JSONLogic sense.
type JSONLogicEvaluator struct {
	logger *zap.Logger
}

// NewJSONLogicEvaluator creates an evaluator; logger may be nil
func NewJSONLogicEvaluator(logger *zap.Logger) *JSONLogicEvaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONLogicEvaluator{logger: logger}
}

// Evaluate applies the rule to data
func (e *JSONLogicEvaluator) Evaluate(ctx context.Context, expression string, data map[string]any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	doc, err := json.Marshal(data)
	if err != nil {
		return false, fmt.Errorf("failed to marshal expression data: %w", err)
	}

	var out bytes.Buffer
	if err := jsonlogic.Apply(strings.NewReader(expression), bytes.NewReader(doc), &out); err != nil {
		e.logger.Warn("Expression evaluation failed", zap.String("expression", expression), zap.Error(err))
		return false, fmt.Errorf("failed to apply expression: %w", err)
	}

	var result any
	if out.Len() > 0 {
		if err := json.Unmarshal(out.Bytes(), &result); err != nil {
			return false, fmt.Errorf("failed to read expression result: %w", err)
		}
	}
	return truthy(result), nil
}

// Validate rejects rules that are not valid JSONLogic
func (e *JSONLogicEvaluator) Validate(expression string) error {
	if !json.Valid([]byte(expression)) {
		return shared.NewDomainError("INVALID_EXPRESSION", "Expression must be valid JSON")
	}
	if !jsonlogic.IsValid(strings.NewReader(expression)) {
		return shared.NewDomainError("INVALID_EXPRESSION", "Expression is not a valid JSONLogic rule")
	}
	return nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

var _ criteria.ExpressionEvaluator = (*JSONLogicEvaluator)(nil)
