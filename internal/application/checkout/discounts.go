package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/lfs/storefront/internal/domain/discount"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/lfs/storefront/internal/domain/voucher"
	"github.com/shopspring/decimal"
)

// AppliedDiscount is a discount granted to a cart.
type AppliedDiscount struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	SKU        string          `json:"sku,omitempty"`
	PriceGross decimal.Decimal `json:"price_gross"`
	PriceNet   decimal.Decimal `json:"price_net"`
	Tax        decimal.Decimal `json:"tax"`
}

// DiscountService grants the discounts whose criteria hold.
type DiscountService struct {
	discounts discount.Repository
	checker   *criteria.Checker
}

// NewDiscountService creates a new DiscountService
func NewDiscountService(discounts discount.Repository, checker *criteria.Checker) *DiscountService {
	return &DiscountService{discounts: discounts, checker: checker}
}

// Basket reduces the session cart to what discounts are computed against
func Basket(sess *Session) discount.Basket {
	b := discount.Basket{
		Cart:       sess.Cart != nil,
		PriceGross: sess.Totals.PriceGross,
		Tax:        sess.Totals.Tax,
	}
	for _, l := range sess.Lines {
		b.Lines = append(b.Lines, discount.Line{ProductID: l.Product.ID, PriceGross: l.TotalGross()})
	}
	return b
}

// Valid returns the active discounts valid for the session
func (s *DiscountService) Valid(ctx context.Context, sess *Session) ([]discount.Discount, error) {
	active, err := s.discounts.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load discounts: %w", err)
	}
	basket := Basket(sess)
	valid := make([]discount.Discount, 0, len(active))
	for i := range active {
		ok, err := active[i].IsValid(ctx, s.checker, basket, sess.Subject)
		if err != nil {
			return nil, err
		}
		if ok {
			valid = append(valid, active[i])
		}
	}
	return valid, nil
}

// Apply returns the discounts granted to the session. Discounts that do not
// sum up are only granted alone and never together with a voucher.
func (s *DiscountService) Apply(ctx context.Context, sess *Session, voucherApplied bool) ([]AppliedDiscount, error) {
	valid, err := s.Valid(ctx, sess)
	if err != nil {
		return nil, err
	}
	basket := Basket(sess)
	granted := discount.Combine(valid, voucherApplied)
	result := make([]AppliedDiscount, 0, len(granted))
	for i := range granted {
		d := &granted[i]
		result = append(result, AppliedDiscount{
			ID:         d.ID,
			Name:       d.Name,
			SKU:        d.SKU,
			PriceGross: d.PriceGross(basket),
			PriceNet:   d.PriceNet(basket),
			Tax:        d.TaxAmount(basket),
		})
	}
	return result, nil
}

// Voucher states reported with a voucher lookup
const (
	VoucherApplied      = "applied"
	VoucherNotFound     = "not_found"
	VoucherNotEffective = "not_effective"
	VoucherNone         = "none"
)

// AppliedVoucher is the outcome of redeeming a voucher number against a cart.
type AppliedVoucher struct {
	Number     string          `json:"number"`
	Status     string          `json:"status"`
	PriceGross decimal.Decimal `json:"price_gross"`
	PriceNet   decimal.Decimal `json:"price_net"`
	Tax        decimal.Decimal `json:"tax"`

	voucher *voucher.Voucher
}

// Applied returns true if the voucher reduces the cart price
func (v *AppliedVoucher) Applied() bool {
	return v != nil && v.Status == VoucherApplied
}

// VoucherService looks vouchers up and generates new ones.
type VoucherService struct {
	vouchers voucher.Repository
	now      func() time.Time
}

// NewVoucherService creates a new VoucherService
func NewVoucherService(vouchers voucher.Repository) *VoucherService {
	return &VoucherService{vouchers: vouchers, now: time.Now}
}

// Apply checks the voucher number against the session cart. An unknown or
// ineffective voucher is reported in the status and credits nothing.
func (s *VoucherService) Apply(ctx context.Context, sess *Session, number string) (*AppliedVoucher, error) {
	result := &AppliedVoucher{
		Number:     number,
		Status:     VoucherNone,
		PriceGross: decimal.Zero,
		PriceNet:   decimal.Zero,
		Tax:        decimal.Zero,
	}
	if number == "" {
		return result, nil
	}
	v, err := s.vouchers.FindByNumber(ctx, number)
	if errors.Is(err, shared.ErrNotFound) {
		result.Status = VoucherNotFound
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load voucher: %w", err)
	}
	if sess.Cart == nil || !v.IsEffective(s.now()) {
		result.Status = VoucherNotEffective
		return result, nil
	}

	amounts := voucher.CartAmounts{
		PriceGross: sess.Totals.PriceGross,
		PriceNet:   sess.Totals.PriceNet,
		Tax:        sess.Totals.Tax,
	}
	result.Status = VoucherApplied
	result.PriceGross = v.PriceGross(amounts)
	result.PriceNet = v.PriceNet(amounts)
	result.Tax = v.TaxAmount(amounts)
	result.voucher = v
	return result, nil
}

// Redeem marks an applied voucher as used
func (s *VoucherService) Redeem(ctx context.Context, applied *AppliedVoucher) error {
	if !applied.Applied() || applied.voucher == nil {
		return nil
	}
	if err := applied.voucher.MarkAsUsed(s.now()); err != nil {
		return err
	}
	if err := s.vouchers.Save(ctx, applied.voucher); err != nil {
		return fmt.Errorf("failed to save voucher: %w", err)
	}
	return nil
}

// Generate creates amount vouchers in a new group using the stored number
// options. Numbers already taken are drawn again.
func (s *VoucherService) Generate(ctx context.Context, groupName string, amount int, kind voucher.Kind, value decimal.Decimal) ([]voucher.Voucher, error) {
	group, err := voucher.NewGroup(groupName)
	if err != nil {
		return nil, err
	}
	opts, err := s.vouchers.Options(ctx)
	if errors.Is(err, shared.ErrNotFound) {
		defaults := voucher.DefaultOptions()
		opts, err = &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load voucher options: %w", err)
	}
	if err := s.vouchers.SaveGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to save voucher group: %w", err)
	}

	const maxAttempts = 10
	created := make([]voucher.Voucher, 0, amount)
	for i := 0; i < amount; i++ {
		var number string
		for attempt := 0; ; attempt++ {
			if attempt == maxAttempts {
				return created, shared.NewDomainError("VOUCHER_NUMBERS_EXHAUSTED", "Could not find a free voucher number")
			}
			number, err = opts.NewNumber()
			if err != nil {
				return created, err
			}
			taken, err := s.vouchers.NumberExists(ctx, number)
			if err != nil {
				return created, fmt.Errorf("failed to check voucher number: %w", err)
			}
			if !taken {
				break
			}
		}
		v, err := voucher.New(number, group.ID, kind, value)
		if err != nil {
			return created, err
		}
		if err := s.vouchers.Save(ctx, v); err != nil {
			return created, fmt.Errorf("failed to save voucher: %w", err)
		}
		created = append(created, *v)
	}
	return created, nil
}
