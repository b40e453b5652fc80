package fees

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/yourusername/resale-pricing/internal/errors"
	"github.com/yourusername/resale-pricing/internal/promotions"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDefaultSchedule(t *testing.T) {
	s := DefaultSchedule()
	assert.True(t, d("9").Equal(s.Value))
	assert.True(t, s.PromotionsApplicable)
	assert.True(t, s.PayoutFeeApplicable)
	assert.Equal(t, ShippingAuto, s.ShippingFeeMode)

	assert.True(t, ZeroSchedule().Value.IsZero())
}

func TestScheduleValidate(t *testing.T) {
	assert.NoError(t, DefaultSchedule().Validate())
	assert.NoError(t, ZeroSchedule().Validate())

	tests := []struct {
		name     string
		schedule Schedule
	}{
		{"unknown mode", Schedule{Value: d("9"), ShippingFeeMode: "halve"}},
		{"empty mode", Schedule{Value: d("9")}},
		{"negative value", Schedule{Value: d("-1"), ShippingFeeMode: ShippingAuto}},
		{"value above 100", Schedule{Value: d("100.5"), ShippingFeeMode: ShippingAuto}},
		{"negative multiplier", Schedule{Value: d("9"), ShippingFeeMode: ShippingHalf, ShippingFeeMultiplier: d("-0.5")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schedule.Validate()
			assert.True(t, errors.HasCode(err, errors.CodeConfiguration), "%v", err)
		})
	}
}

func TestResolveSellingFee(t *testing.T) {
	promo := &promotions.Applied{ID: 1, Fee: d("6")}

	tests := []struct {
		name     string
		schedule Schedule
		applied  *promotions.Applied
		want     string
	}{
		{"no promotion uses schedule", DefaultSchedule(), nil, "9"},
		{"promotion overrides", DefaultSchedule(), promo, "6"},
		{"promotion higher than schedule ignored", Schedule{Value: d("5"), PromotionsApplicable: true}, promo, "5"},
		{"schedule without promotions", Schedule{Value: d("9")}, promo, "9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveSellingFee(tt.schedule, tt.applied)
			assert.Truef(t, d(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestResolveShippingFee(t *testing.T) {
	precision := d("0.1")
	tests := []struct {
		name     string
		schedule Schedule
		regular  string
		want     string
	}{
		{"auto", Schedule{ShippingFeeMode: ShippingAuto, ShippingFeeMultiplier: d("0.5")}, "20", "20"},
		{"free", Schedule{ShippingFeeMode: ShippingFree}, "20", "0"},
		{"half", Schedule{ShippingFeeMode: ShippingHalf, ShippingFeeMultiplier: d("0.5")}, "20", "10"},
		{"half rounds up", Schedule{ShippingFeeMode: ShippingHalf, ShippingFeeMultiplier: d("0.5")}, "20.3", "10.2"},
		{"half without multiplier", Schedule{ShippingFeeMode: ShippingHalf}, "15", "7.5"},
		{"unset mode behaves as auto", Schedule{}, "12", "12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveShippingFee(tt.schedule, d(tt.regular), precision)
			assert.Truef(t, d(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestFeeForPercent(t *testing.T) {
	assert.True(t, d("60").Equal(FeeForPercent(d("1000"), d("6"), d("0.01"))))
	assert.True(t, d("0.03").Equal(FeeForPercent(d("0.99"), d("3"), d("0.01"))))
}
