package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliveryTime_Conversions(t *testing.T) {
	days := NewDeliveryTime(1, 2, DeliveryTimeUnitDays)

	assert.Equal(t, NewDeliveryTime(24, 48, DeliveryTimeUnitHours), days.AsHours())
	assert.Equal(t, NewDeliveryTime(1, 2, DeliveryTimeUnitDays), days.AsHours().AsDays())

	weeks := NewDeliveryTime(2, 4, DeliveryTimeUnitWeeks)
	assert.Equal(t, NewDeliveryTime(14, 28, DeliveryTimeUnitDays), weeks.AsDays())
	assert.Equal(t, NewDeliveryTime(0.5, 1, DeliveryTimeUnitMonths), weeks.AsMonths())

	months := NewDeliveryTime(1, 2, DeliveryTimeUnitMonths)
	assert.Equal(t, NewDeliveryTime(4, 8, DeliveryTimeUnitWeeks), months.AsWeeks())
	assert.Equal(t, NewDeliveryTime(30, 60, DeliveryTimeUnitDays), months.AsDays())
	assert.Equal(t, NewDeliveryTime(720, 1440, DeliveryTimeUnitHours), months.AsHours())
}

func TestDeliveryTime_Add(t *testing.T) {
	a := NewDeliveryTime(1, 2, DeliveryTimeUnitDays)
	b := NewDeliveryTime(3, 4, DeliveryTimeUnitDays)
	assert.Equal(t, NewDeliveryTime(4, 6, DeliveryTimeUnitDays), a.Add(b))

	h := NewDeliveryTime(2, 4, DeliveryTimeUnitHours)
	assert.Equal(t, NewDeliveryTime(26, 52, DeliveryTimeUnitHours), a.Add(h))
}

func TestDeliveryTime_SubtractDays(t *testing.T) {
	assert.Equal(t, NewDeliveryTime(0, 3, DeliveryTimeUnitDays), NewDeliveryTime(2, 5, DeliveryTimeUnitDays).SubtractDays(2))
	assert.Equal(t, NewDeliveryTime(0, 24, DeliveryTimeUnitHours), NewDeliveryTime(24, 48, DeliveryTimeUnitHours).SubtractDays(1))
	assert.Equal(t, NewDeliveryTime(1, 2, DeliveryTimeUnitWeeks), NewDeliveryTime(2, 3, DeliveryTimeUnitWeeks).SubtractDays(7))
	assert.Equal(t, NewDeliveryTime(0, 0, DeliveryTimeUnitMonths), NewDeliveryTime(1, 1, DeliveryTimeUnitMonths).SubtractDays(60))
}

func TestDeliveryTime_AsReasonableUnit(t *testing.T) {
	assert.Equal(t, DeliveryTimeUnitHours, NewDeliveryTime(1, 2, DeliveryTimeUnitDays).AsReasonableUnit().Unit)
	assert.Equal(t, DeliveryTimeUnitDays, NewDeliveryTime(1, 3, DeliveryTimeUnitDays).AsReasonableUnit().Unit)
	assert.Equal(t, DeliveryTimeUnitWeeks, NewDeliveryTime(1, 8, DeliveryTimeUnitDays).AsReasonableUnit().Unit)
	assert.Equal(t, DeliveryTimeUnitMonths, NewDeliveryTime(1, 61, DeliveryTimeUnitDays).AsReasonableUnit().Unit)
}

func TestDeliveryTime_RoundAndString(t *testing.T) {
	assert.Equal(t, NewDeliveryTime(2, 3, DeliveryTimeUnitDays), NewDeliveryTime(1.5, 2.6, DeliveryTimeUnitDays).Round())

	tests := []struct {
		dt   DeliveryTime
		want string
	}{
		{NewDeliveryTime(1, 2, DeliveryTimeUnitDays), "1-2 days"},
		{NewDeliveryTime(1, 1, DeliveryTimeUnitWeeks), "1 week"},
		{NewDeliveryTime(0, 3, DeliveryTimeUnitHours), "3 hours"},
		{NewDeliveryTime(0, 1, DeliveryTimeUnitMonths), "1 month"},
		{NewDeliveryTime(2, 2, DeliveryTimeUnitDays), "2 days"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.dt.String())
	}
	assert.Equal(t, "2-3 days", NewDeliveryTime(1.6, 2.7, DeliveryTimeUnitDays).Name())
}

func TestDeliveryTime_Greater(t *testing.T) {
	assert.True(t, NewDeliveryTime(1, 3, DeliveryTimeUnitDays).Greater(NewDeliveryTime(1, 2, DeliveryTimeUnitDays)))
	assert.False(t, DefaultDeliveryTime().Greater(DefaultDeliveryTime()))
}
