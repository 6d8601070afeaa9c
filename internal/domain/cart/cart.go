package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Cart holds the products a customer is about to buy. It belongs to a user
// when one is known and to the session otherwise.
type Cart struct {
	shared.BaseAggregateRoot
	UserID    *uuid.UUID `gorm:"type:uuid;index"`
	SessionID string     `gorm:"type:varchar(100);not null;default:'';index"`
	Items     []Item     `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// Item is one product line of a cart.
type Item struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CartID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`
	Amount    float64   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "cart_items"
}

// New creates an empty cart for a session and an optional user
func New(sessionID string, userID *uuid.UUID) (*Cart, error) {
	if sessionID == "" && userID == nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Cart needs a session or a user")
	}
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		SessionID:         sessionID,
		Items:             make([]Item, 0),
	}, nil
}

// Add adds amount of a product, merging with an existing line.
func (c *Cart) Add(productID uuid.UUID, amount float64) error {
	if amount <= 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	now := time.Now()
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Amount += amount
			c.Items[i].UpdatedAt = now
			c.changed()
			return nil
		}
	}
	c.Items = append(c.Items, Item{
		ID:        uuid.New(),
		CartID:    c.ID,
		ProductID: productID,
		Amount:    amount,
		CreatedAt: now,
		UpdatedAt: now,
	})
	c.changed()
	return nil
}

// SetAmount sets the amount of a line; zero removes it.
func (c *Cart) SetAmount(itemID uuid.UUID, amount float64) error {
	if amount < 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	for i := range c.Items {
		if c.Items[i].ID != itemID {
			continue
		}
		if amount == 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		} else {
			c.Items[i].Amount = amount
			c.Items[i].UpdatedAt = time.Now()
		}
		c.changed()
		return nil
	}
	return shared.ErrNotFound
}

// Remove removes a line
func (c *Cart) Remove(itemID uuid.UUID) error {
	return c.SetAmount(itemID, 0)
}

// Merge moves the items of another cart into this one, e.g. the session
// cart of a customer who just logged in.
func (c *Cart) Merge(other *Cart) {
	for _, item := range other.Items {
		_ = c.Add(item.ProductID, item.Amount)
	}
}

// AssignUser assigns the cart to a user
func (c *Cart) AssignUser(userID uuid.UUID) {
	c.UserID = &userID
	c.changed()
}

// AmountOfItems returns the sum of all line amounts
func (c *Cart) AmountOfItems() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Amount
	}
	return total
}

// IsEmpty returns true if the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// MarkDeleted records the deletion of the cart
func (c *Cart) MarkDeleted() {
	c.AddDomainEvent(NewCartDeletedEvent(c))
}

func (c *Cart) changed() {
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewCartChangedEvent(c))
}

// LinePrice is the unit price of one cart line.
type LinePrice struct {
	Amount     float64
	PriceGross decimal.Decimal
	PriceNet   decimal.Decimal
}

// Totals are the sums over all lines of a cart.
type Totals struct {
	PriceGross    decimal.Decimal `json:"price_gross"`
	PriceNet      decimal.Decimal `json:"price_net"`
	Tax           decimal.Decimal `json:"tax"`
	AmountOfItems float64         `json:"amount_of_items"`
}

// Sum adds up unit price times amount of every line. Tax is the difference
// of gross and net.
func Sum(lines []LinePrice) Totals {
	t := Totals{PriceGross: decimal.Zero, PriceNet: decimal.Zero, Tax: decimal.Zero}
	for _, l := range lines {
		amount := decimal.NewFromFloat(l.Amount)
		gross := l.PriceGross.Mul(amount)
		net := l.PriceNet.Mul(amount)
		t.PriceGross = t.PriceGross.Add(gross)
		t.PriceNet = t.PriceNet.Add(net)
		t.Tax = t.Tax.Add(gross.Sub(net))
		t.AmountOfItems += l.Amount
	}
	return t
}

// Repository defines the interface for cart persistence
type Repository interface {
	// FindByID finds a cart with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Cart, error)

	// FindByUser finds the cart of a user
	FindByUser(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// FindBySession finds the cart of a session
	FindBySession(ctx context.Context, sessionID string) (*Cart, error)

	// Save creates or updates a cart and replaces its items
	Save(ctx context.Context, cart *Cart) error

	// Delete deletes a cart and its items
	Delete(ctx context.Context, id uuid.UUID) error
}
