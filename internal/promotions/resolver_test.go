package promotions

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func sellingCtx() Context {
	return Context{
		Scope:                ScopeSelling,
		CountryID:            1,
		ProductCollectionIDs: []int{7, 9},
		UserGroups:           []string{"vip"},
		Now:                  now,
		Price:                d("1000"),
		RegularFee:           d("9"),
	}
}

func TestPromotionFee(t *testing.T) {
	tests := []struct {
		name    string
		typ     DiscountType
		disc    string
		regular string
		want    string
	}{
		{"fixed lower", DiscountFixed, "6", "9", "6"},
		{"fixed higher keeps regular", DiscountFixed, "12", "9", "9"},
		{"reduction", DiscountFixedReduction, "5", "20", "15"},
		{"reduction floors at zero", DiscountFixedReduction, "25", "20", "0"},
		{"percentage", DiscountPercentage, "50", "9", "4.5"},
		{"percentage rounds up to one decimal", DiscountPercentage, "33", "9", "6.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Promotion{DiscountType: tt.typ, Discount: d(tt.disc), Scope: ScopeShipping}
			got := p.Fee(d(tt.regular), false)
			assert.Truef(t, d(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestApplicable(t *testing.T) {
	base := Promotion{ID: 1, Scope: ScopeSelling, DiscountType: DiscountFixed, Discount: d("6")}

	tests := []struct {
		name   string
		mutate func(p *Promotion, c *Context)
		want   bool
	}{
		{"unrestricted", func(*Promotion, *Context) {}, true},
		{"wrong scope", func(p *Promotion, _ *Context) { p.Scope = ScopeShipping }, false},
		{"not started", func(p *Promotion, _ *Context) { p.StartAt = now.Add(time.Hour) }, false},
		{"starts exactly now", func(p *Promotion, _ *Context) { p.StartAt = now }, true},
		{"ends exactly now is excluded", func(p *Promotion, _ *Context) { p.EndAt = now }, false},
		{"ends later", func(p *Promotion, _ *Context) { p.EndAt = now.Add(time.Minute) }, true},
		{"country match", func(p *Promotion, _ *Context) { p.CountryID = 1 }, true},
		{"country mismatch", func(p *Promotion, _ *Context) { p.CountryID = 2 }, false},
		{"collection match", func(p *Promotion, _ *Context) { p.ProductCollectionID = 9 }, true},
		{"collection mismatch", func(p *Promotion, _ *Context) { p.ProductCollectionID = 3 }, false},
		{"user group match", func(p *Promotion, _ *Context) { p.UserGroup = "vip" }, true},
		{"user group mismatch", func(p *Promotion, _ *Context) { p.UserGroup = "staff" }, false},
		{"minimum met", func(p *Promotion, _ *Context) { p.MinimumValue = d("1000") }, true},
		{"minimum not met", func(p *Promotion, _ *Context) { p.MinimumValue = d("1000.01") }, false},
		{"storage only without storage", func(p *Promotion, _ *Context) { p.StorageOnly = true }, false},
		{"storage only from storage", func(p *Promotion, c *Context) { p.StorageOnly = true; c.FromStorage = true }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, c := base, sellingCtx()
			tt.mutate(&p, &c)
			assert.Equal(t, tt.want, Applicable(p, c))
		})
	}
}

func TestResolve_NoneApplicable(t *testing.T) {
	assert.Nil(t, Resolve(nil, sellingCtx()))

	higher := Promotion{ID: 1, Scope: ScopeSelling, DiscountType: DiscountFixed, Discount: d("10")}
	assert.Nil(t, Resolve([]Promotion{higher}, sellingCtx()), "a promotion that does not lower the fee is not selected")
}

func TestResolve_PrefersCollectionSpecific(t *testing.T) {
	promos := []Promotion{
		{ID: 1, Scope: ScopeSelling, DiscountType: DiscountFixed, Discount: d("3")},
		{ID: 2, Scope: ScopeSelling, DiscountType: DiscountFixed, Discount: d("6"), ProductCollectionID: 7},
	}

	got := Resolve(promos, sellingCtx())
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.ID)
	assert.True(t, d("6").Equal(got.Fee))
}

func TestResolve_LargerDiscountThenLowestID(t *testing.T) {
	promos := []Promotion{
		{ID: 5, Scope: ScopeSelling, DiscountType: DiscountFixed, Discount: d("6")},
		{ID: 3, Scope: ScopeSelling, DiscountType: DiscountFixedReduction, Discount: d("3")},
		{ID: 4, Scope: ScopeSelling, DiscountType: DiscountFixed, Discount: d("7")},
	}

	got := Resolve(promos, sellingCtx())
	require.NotNil(t, got)
	// ids 5 and 3 both yield fee 6 (discount 3); lowest id wins
	assert.Equal(t, int64(3), got.ID)

	promos = append(promos, Promotion{ID: 9, Scope: ScopeSelling, DiscountType: DiscountPercentage, Discount: d("50")})
	got = Resolve(promos, sellingCtx())
	require.NotNil(t, got)
	assert.Equal(t, int64(9), got.ID)
	assert.True(t, d("4.5").Equal(got.Fee))
}

func TestResolve_ExactlyOneForOverlappingPromotions(t *testing.T) {
	var promos []Promotion
	for i := int64(1); i <= 20; i++ {
		promos = append(promos, Promotion{
			ID: i, Scope: ScopeSelling, DiscountType: DiscountFixedReduction,
			Discount: decimal.NewFromInt(i % 4),
		})
	}

	got := Resolve(promos, sellingCtx())
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.ID)
	assert.True(t, d("6").Equal(FeeAfter(d("9"), got)))
}

func TestResolve_ListingDiscount(t *testing.T) {
	promos := []Promotion{{
		ID: 1, Scope: ScopeSelling, DiscountType: DiscountFixed,
		Discount: d("6"), ListingDiscount: d("5"),
	}}
	ctx := sellingCtx()
	ctx.Listing = true

	got := Resolve(promos, ctx)
	require.NotNil(t, got)
	assert.True(t, d("5").Equal(got.Fee))
	assert.True(t, d("5").Equal(got.Discount))
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	promos := []Promotion{
		{ID: 2, Scope: ScopeSelling, DiscountType: DiscountFixed, Discount: d("6")},
		{ID: 1, Scope: ScopeSelling, DiscountType: DiscountFixed, Discount: d("5")},
	}
	before := append([]Promotion(nil), promos...)

	Resolve(promos, sellingCtx())
	assert.Equal(t, before, promos)
}

func TestFeeAfter(t *testing.T) {
	assert.True(t, d("20").Equal(FeeAfter(d("20"), nil)))
	assert.True(t, d("15").Equal(FeeAfter(d("20"), &Applied{Fee: d("15")})))
}
