package voucher

import (
	"crypto/rand"
	"math/big"

	"github.com/lfs/storefront/internal/domain/shared"
)

// Options configure generated voucher numbers.
type Options struct {
	ID      int    `gorm:"primaryKey"`
	Prefix  string `gorm:"type:varchar(20);not null;default:''"`
	Suffix  string `gorm:"type:varchar(20);not null;default:''"`
	Length  int    `gorm:"not null"`
	Letters string `gorm:"type:varchar(40);not null"`
}

// TableName returns the table name for GORM
func (Options) TableName() string {
	return "voucher_options"
}

// DefaultOptions returns five upper case letters without prefix or suffix
func DefaultOptions() Options {
	return Options{ID: 1, Length: 5, Letters: "ABCDEFGHIJKLMNOPQRSTUVWXYZ"}
}

// NewNumber generates prefix + Length random letters + suffix.
func (o Options) NewNumber() (string, error) {
	letters := []rune(o.Letters)
	if len(letters) == 0 || o.Length <= 0 {
		return "", shared.NewDomainError("INVALID_OPTIONS", "Voucher number needs letters and a positive length")
	}
	buf := make([]rune, o.Length)
	max := big.NewInt(int64(len(letters)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = letters[n.Int64()]
	}
	return o.Prefix + string(buf) + o.Suffix, nil
}
