package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/lfs/storefront/internal/domain/customer"
	"github.com/lfs/storefront/internal/domain/payment"
	"go.uber.org/zap"
)

// PaymentService applies the payment rules to a checkout session.
type PaymentService struct {
	methods   payment.Repository
	customers customer.Repository
	checker   *criteria.Checker
	logger    *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(methods payment.Repository, customers customer.Repository, checker *criteria.Checker, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{methods: methods, customers: customers, checker: checker, logger: logger}
}

func (s *PaymentService) active(ctx context.Context) ([]payment.Method, error) {
	methods, err := s.methods.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment methods: %w", err)
	}
	return methods, nil
}

// ValidMethods returns the payment methods offered to the session
func (s *PaymentService) ValidMethods(ctx context.Context, sess *Session) ([]payment.Method, error) {
	active, err := s.active(ctx)
	if err != nil {
		return nil, err
	}
	return payment.ValidMethods(ctx, s.checker, active, sess.Subject)
}

// SelectedMethod returns the customer's choice, else the default method
func (s *PaymentService) SelectedMethod(ctx context.Context, sess *Session) (*payment.Method, error) {
	active, err := s.active(ctx)
	if err != nil {
		return nil, err
	}
	return payment.SelectedMethod(ctx, s.checker, active, sess.Customer.PaymentMethodID(), sess.Subject)
}

// SelectMethod stores the customer's choice. The method must be valid.
func (s *PaymentService) SelectMethod(ctx context.Context, sess *Session, id uuid.UUID) error {
	valid, err := s.ValidMethods(ctx, sess)
	if err != nil {
		return err
	}
	if !containsMethod(valid, id) {
		return ErrMethodNotValid
	}
	cust, err := ensureCustomer(sess)
	if err != nil {
		return err
	}
	cust.SelectPaymentMethod(&id)
	if err := s.customers.Save(ctx, cust); err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}
	sess.Subject.PaymentMethodID = id
	return nil
}

// UpdateToValid replaces an invalid selection with the default method
func (s *PaymentService) UpdateToValid(ctx context.Context, sess *Session) (uuid.UUID, error) {
	if sess.Customer == nil {
		return uuid.Nil, nil
	}
	active, err := s.active(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	current := sess.Customer.PaymentMethodID()
	id, changed, err := payment.UpdateToValid(ctx, s.checker, active, current, sess.Subject)
	if err != nil || !changed {
		return id, err
	}

	s.logger.Info("Replacing invalid payment method selection",
		zap.String("customer_id", sess.Customer.ID.String()),
		zap.String("from", current.String()),
		zap.String("to", id.String()))
	if id == uuid.Nil {
		sess.Customer.SelectPaymentMethod(nil)
	} else {
		sess.Customer.SelectPaymentMethod(&id)
	}
	if err := s.customers.Save(ctx, sess.Customer); err != nil {
		return id, fmt.Errorf("failed to save customer: %w", err)
	}
	sess.Subject.PaymentMethodID = id
	return id, nil
}

// Costs returns the costs of m for the session
func (s *PaymentService) Costs(ctx context.Context, sess *Session, m *payment.Method) (payment.Costs, error) {
	if m == nil {
		return payment.CostsFor(nil, nil), nil
	}
	price, err := payment.FirstValidPrice(ctx, s.checker, m, sess.Subject)
	if err != nil {
		return payment.CostsFor(nil, nil), err
	}
	return payment.CostsFor(m, price), nil
}

// SelectedCosts returns the selected method and its costs
func (s *PaymentService) SelectedCosts(ctx context.Context, sess *Session) (*payment.Method, payment.Costs, error) {
	m, err := s.SelectedMethod(ctx, sess)
	if err != nil {
		return nil, payment.CostsFor(nil, nil), err
	}
	costs, err := s.Costs(ctx, sess, m)
	return m, costs, err
}

func containsMethod(methods []payment.Method, id uuid.UUID) bool {
	for _, m := range methods {
		if m.ID == id {
			return true
		}
	}
	return false
}
