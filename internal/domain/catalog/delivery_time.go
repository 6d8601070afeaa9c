package catalog

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
)

// DeliveryTimeUnit is the unit of a delivery time range.
type DeliveryTimeUnit int

const (
	DeliveryTimeUnitHours  DeliveryTimeUnit = 1
	DeliveryTimeUnitDays   DeliveryTimeUnit = 2
	DeliveryTimeUnitWeeks  DeliveryTimeUnit = 3
	DeliveryTimeUnitMonths DeliveryTimeUnit = 4
)

var unitNames = map[DeliveryTimeUnit][2]string{
	DeliveryTimeUnitHours:  {"hour", "hours"},
	DeliveryTimeUnitDays:   {"day", "days"},
	DeliveryTimeUnitWeeks:  {"week", "weeks"},
	DeliveryTimeUnitMonths: {"month", "months"},
}

// hoursPer converts one unit into hours. A month counts 30 days.
var hoursPer = map[DeliveryTimeUnit]float64{
	DeliveryTimeUnitHours:  1,
	DeliveryTimeUnitDays:   24,
	DeliveryTimeUnitWeeks:  24 * 7,
	DeliveryTimeUnitMonths: 24 * 30,
}

// DeliveryTime is a min/max range in a unit. Stored rows are referenced by
// products and shipping methods; computed values carry a nil ID.
type DeliveryTime struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Min         float64          `gorm:"not null" json:"min"`
	Max         float64          `gorm:"not null" json:"max"`
	Unit        DeliveryTimeUnit `gorm:"not null" json:"unit"`
	Description string           `gorm:"type:text" json:"description,omitempty"`
}

// TableName returns the table name for GORM
func (DeliveryTime) TableName() string {
	return "delivery_times"
}

// NewDeliveryTime creates an unsaved delivery time value.
func NewDeliveryTime(min, max float64, unit DeliveryTimeUnit) DeliveryTime {
	return DeliveryTime{Min: min, Max: max, Unit: unit}
}

// DefaultDeliveryTime is used when neither product, shipping method nor shop
// define one.
func DefaultDeliveryTime() DeliveryTime {
	return NewDeliveryTime(1, 2, DeliveryTimeUnitDays)
}

// Greater compares by maximum.
func (d DeliveryTime) Greater(other DeliveryTime) bool {
	return d.Max > other.Max
}

// Add sums two delivery times. Different units are added in hours.
func (d DeliveryTime) Add(other DeliveryTime) DeliveryTime {
	a, b := d, other
	if a.Unit != b.Unit {
		a, b = a.AsHours(), b.AsHours()
	}
	return NewDeliveryTime(a.Min+b.Min, a.Max+b.Max, a.Unit)
}

// SubtractDays subtracts days from min and max, clamping at zero.
func (d DeliveryTime) SubtractDays(days float64) DeliveryTime {
	var delta float64
	switch d.Unit {
	case DeliveryTimeUnitHours:
		delta = 24 * days
	case DeliveryTimeUnitDays:
		delta = days
	case DeliveryTimeUnitWeeks:
		delta = days / 7
	case DeliveryTimeUnitMonths:
		delta = days / 30
	}
	return NewDeliveryTime(math.Max(d.Min-delta, 0), math.Max(d.Max-delta, 0), d.Unit)
}

func (d DeliveryTime) convert(to DeliveryTimeUnit) DeliveryTime {
	if d.Unit == to {
		return NewDeliveryTime(d.Min, d.Max, to)
	}
	// weeks and months convert with four weeks per month
	switch {
	case d.Unit == DeliveryTimeUnitMonths && to == DeliveryTimeUnitWeeks:
		return NewDeliveryTime(d.Min*4, d.Max*4, to)
	case d.Unit == DeliveryTimeUnitWeeks && to == DeliveryTimeUnitMonths:
		return NewDeliveryTime(d.Min/4, d.Max/4, to)
	}
	from, ok := hoursPer[d.Unit]
	if !ok {
		from = hoursPer[DeliveryTimeUnitDays]
	}
	return NewDeliveryTime(d.Min*from/hoursPer[to], d.Max*from/hoursPer[to], to)
}

// AsHours returns the delivery time in hours
func (d DeliveryTime) AsHours() DeliveryTime { return d.convert(DeliveryTimeUnitHours) }

// AsDays returns the delivery time in days
func (d DeliveryTime) AsDays() DeliveryTime { return d.convert(DeliveryTimeUnitDays) }

// AsWeeks returns the delivery time in weeks
func (d DeliveryTime) AsWeeks() DeliveryTime { return d.convert(DeliveryTimeUnitWeeks) }

// AsMonths returns the delivery time in months
func (d DeliveryTime) AsMonths() DeliveryTime { return d.convert(DeliveryTimeUnitMonths) }

// AsReasonableUnit picks the unit shown to customers based on the maximum:
// above two months in months, above one week in weeks, above two days in
// days, otherwise hours.
func (d DeliveryTime) AsReasonableUnit() DeliveryTime {
	h := d.AsHours()
	switch {
	case h.Max > 1440:
		return h.AsMonths()
	case h.Max > 168:
		return h.AsWeeks()
	case h.Max > 48:
		return h.AsDays()
	default:
		return h
	}
}

// Round rounds min and max to whole numbers.
func (d DeliveryTime) Round() DeliveryTime {
	return NewDeliveryTime(math.Round(d.Min+0.001), math.Round(d.Max+0.001), d.Unit)
}

// String formats the range, e.g. "1-2 days" or "1 week".
func (d DeliveryTime) String() string {
	min, max := d.Min, d.Max
	if min == 0 {
		min = max
	}
	names, ok := unitNames[d.Unit]
	if !ok {
		names = unitNames[DeliveryTimeUnitDays]
	}
	if min == max {
		unit := names[1]
		if min == 1 {
			unit = names[0]
		}
		return fmt.Sprintf("%s %s", formatAmount(min), unit)
	}
	return fmt.Sprintf("%s-%s %s", formatAmount(min), formatAmount(max), names[1])
}

// Name is the rounded string form.
func (d DeliveryTime) Name() string {
	return d.Round().String()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
