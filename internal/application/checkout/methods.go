package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/lfs/storefront/internal/domain/payment"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/lfs/storefront/internal/domain/shipping"
	"go.uber.org/zap"
)

// MethodValidator answers method criteria (IS_VALID / IS_NOT_VALID) by
// loading the referenced method and checking its own criteria.
type MethodValidator struct {
	shippingMethods shipping.Repository
	paymentMethods  payment.Repository
	checker         *criteria.Checker
	logger          *zap.Logger
}

// NewMethodValidator creates a new MethodValidator
func NewMethodValidator(shippingMethods shipping.Repository, paymentMethods payment.Repository, checker *criteria.Checker, logger *zap.Logger) *MethodValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MethodValidator{
		shippingMethods: shippingMethods,
		paymentMethods:  paymentMethods,
		checker:         checker,
		logger:          logger,
	}
}

// IsMethodValid implements criteria.MethodValidator. Unknown and inactive
// methods are not valid.
func (v *MethodValidator) IsMethodValid(ctx context.Context, kind criteria.OwnerType, id uuid.UUID, s *criteria.Subject) bool {
	var (
		owner  criteria.Owner
		active bool
		err    error
	)
	switch kind {
	case criteria.OwnerShippingMethod:
		var m *shipping.Method
		m, err = v.shippingMethods.FindByID(ctx, id)
		if err == nil {
			owner, active = m, m.Active
		}
	case criteria.OwnerPaymentMethod:
		var m *payment.Method
		m, err = v.paymentMethods.FindByID(ctx, id)
		if err == nil {
			owner, active = m, m.Active
		}
	default:
		return false
	}
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			v.logger.Warn("Failed to load method for criterion",
				zap.String("kind", string(kind)),
				zap.String("method_id", id.String()),
				zap.Error(err))
		}
		return false
	}
	if !active {
		return false
	}

	ok, err := v.checker.IsValid(ctx, owner, s)
	if err != nil {
		v.logger.Warn("Failed to check method criteria", zap.String("method_id", id.String()), zap.Error(err))
		return false
	}
	return ok
}
