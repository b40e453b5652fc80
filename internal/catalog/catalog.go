// Package catalog loads the read-only reference data the calculators price
// against: currencies, countries, per-currency constants, buy payment fees,
// platform promotions, fee schedules and payout configuration.
package catalog

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/resale-pricing/internal/errors"
	"github.com/yourusername/resale-pricing/internal/fees"
	"github.com/yourusername/resale-pricing/internal/logger"
	"github.com/yourusername/resale-pricing/internal/money"
	"github.com/yourusername/resale-pricing/internal/payout"
	"github.com/yourusername/resale-pricing/internal/promotions"
)

var (
	defaultProcessingSellPercent     = decimal.NewFromInt(3)
	defaultDeliveryProtectionPercent = decimal.NewFromInt(3)
	defaultCryptoSpread              = decimal.RequireFromString("0.008")
)

// DeliveryFees are a country's buyer delivery charges in the country's currency.
// Increment and Surcharge are per kilogram of effective weight.
type DeliveryFees struct {
	Base            decimal.Decimal `json:"base" yaml:"base"`
	Increment       decimal.Decimal `json:"increment" yaml:"increment"`
	Surcharge       decimal.Decimal `json:"surcharge" yaml:"surcharge"`
	SurchargeRemote decimal.Decimal `json:"surcharge_remote" yaml:"surcharge_remote"`
	Instant         decimal.Decimal `json:"instant" yaml:"instant"`
}

// ShippingFees are a country's seller shipping charges in the country's currency.
type ShippingFees struct {
	Base      decimal.Decimal `json:"base" yaml:"base"`
	Increment decimal.Decimal `json:"increment" yaml:"increment"`
	Surcharge decimal.Decimal `json:"surcharge" yaml:"surcharge"`
}

// Country ties a market to its currency and fee tables.
type Country struct {
	ID           int                   `json:"id" yaml:"id"`
	Name         string                `json:"name" yaml:"name"`
	Shortcode    string                `json:"shortcode" yaml:"shortcode"`
	CurrencyID   int                   `json:"currency_id" yaml:"currency_id"`
	Delivery     DeliveryFees          `json:"delivery" yaml:"delivery"`
	Shipping     ShippingFees          `json:"shipping" yaml:"shipping"`
	PayoutConfig []payout.MethodConfig `json:"payout_config" yaml:"payout_config"`
}

// Payout returns the country's payout fee table.
func (c Country) Payout() payout.Config {
	return payout.NewConfig(c.PayoutConfig)
}

// CurrencyConstants are the per-currency figures that are not part of the rate table.
type CurrencyConstants struct {
	CurrencyID                 int                        `json:"currency_id" yaml:"currency_id"`
	DeliveryInsurancePrecision decimal.Decimal            `json:"delivery_insurance_precision" yaml:"delivery_insurance_precision"`
	DeliveryInsuranceMaxFree   decimal.Decimal            `json:"delivery_insurance_max_free" yaml:"delivery_insurance_max_free"`
	OfferPriceMax              decimal.Decimal            `json:"offer_price_max" yaml:"offer_price_max"`
	RefereeDiscountValue       decimal.Decimal            `json:"referee_discount_value" yaml:"referee_discount_value"`
	RefereeDiscountMinBuy      decimal.Decimal            `json:"referee_discount_min_buy" yaml:"referee_discount_min_buy"`
	PayoutTierThresholds       map[string]decimal.Decimal `json:"payout_tier_thresholds" yaml:"payout_tier_thresholds"`
}

// BuyPaymentFee is one row of the buyer processing-fee table. Zero fields match anything.
type BuyPaymentFee struct {
	CountryID     int             `json:"country_id,omitempty" yaml:"country_id"`
	PaymentMethod string          `json:"payment_method,omitempty" yaml:"payment_method"`
	Mode          string          `json:"mode,omitempty" yaml:"mode"`
	Fee           decimal.Decimal `json:"fee" yaml:"fee"`
}

// Matches reports whether the rule covers the given purchase.
func (f BuyPaymentFee) Matches(countryID int, paymentMethod, mode string) bool {
	if f.CountryID != 0 && f.CountryID != countryID {
		return false
	}
	if f.PaymentMethod != "" && f.PaymentMethod != paymentMethod {
		return false
	}
	if f.Mode != "" && f.Mode != mode {
		return false
	}
	return true
}

// Catalog is the full reference data set. It is never mutated after Parse.
type Catalog struct {
	Currencies                []money.Currency       `json:"currencies" yaml:"currencies"`
	Countries                 []Country              `json:"countries" yaml:"countries"`
	Constants                 []CurrencyConstants    `json:"constants" yaml:"constants"`
	BuyPaymentFees            []BuyPaymentFee        `json:"buy_payment_fees" yaml:"buy_payment_fees"`
	ProcessingSellPercent     decimal.Decimal        `json:"processing_sell_percent" yaml:"processing_sell_percent"`
	DeliveryProtectionPercent decimal.Decimal        `json:"delivery_protection_percent" yaml:"delivery_protection_percent"`
	Promotions                []promotions.Promotion `json:"promotions" yaml:"promotions"`
	FeeSchedules              []fees.Schedule        `json:"fee_schedules" yaml:"fee_schedules"`
	Crypto                    payout.CryptoConfig    `json:"crypto" yaml:"crypto"`

	currencyByID   map[int]money.Currency
	currencyByCode map[string]money.Currency
	countryByID    map[int]Country
	constantsByID  map[int]CurrencyConstants
	scheduleByLvl  map[int]fees.Schedule
}

// Load reads and parses a YAML catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ErrConfiguration("catalog", fmt.Sprintf("read %s: %v", path, err))
	}

	cat, err := Parse(data)
	if err != nil {
		return nil, err
	}

	logger.Info("Catalog loaded", logger.Fields{
		"path":       path,
		"currencies": len(cat.Currencies),
		"countries":  len(cat.Countries),
		"promotions": len(cat.Promotions),
	})
	return cat, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, errors.ErrConfiguration("catalog", fmt.Sprintf("invalid yaml: %v", err))
	}
	if err := cat.init(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Catalog) init() error {
	if c.ProcessingSellPercent.IsZero() {
		c.ProcessingSellPercent = defaultProcessingSellPercent
	}
	if c.DeliveryProtectionPercent.IsZero() {
		c.DeliveryProtectionPercent = defaultDeliveryProtectionPercent
	}
	if c.Crypto.Spread.IsZero() {
		c.Crypto.Spread = defaultCryptoSpread
	}

	c.currencyByID = make(map[int]money.Currency, len(c.Currencies))
	c.currencyByCode = make(map[string]money.Currency, len(c.Currencies))
	for _, cur := range c.Currencies {
		if err := cur.Validate(); err != nil {
			return err
		}
		if _, dup := c.currencyByID[cur.ID]; dup {
			return errors.ErrConfiguration("catalog", fmt.Sprintf("duplicate currency id %d", cur.ID))
		}
		c.currencyByID[cur.ID] = cur
		c.currencyByCode[cur.Code] = cur
	}

	c.countryByID = make(map[int]Country, len(c.Countries))
	for _, country := range c.Countries {
		if _, ok := c.currencyByID[country.CurrencyID]; !ok {
			return errors.ErrConfiguration(country.Name, fmt.Sprintf("unknown currency id %d", country.CurrencyID))
		}
		if _, dup := c.countryByID[country.ID]; dup {
			return errors.ErrConfiguration("catalog", fmt.Sprintf("duplicate country id %d", country.ID))
		}
		for _, m := range country.PayoutConfig {
			if !m.Method.Valid() {
				return errors.ErrConfiguration(country.Name, fmt.Sprintf("unknown payout method '%s'", m.Method))
			}
		}
		c.countryByID[country.ID] = country
	}

	c.constantsByID = make(map[int]CurrencyConstants, len(c.Constants))
	for _, k := range c.Constants {
		if _, ok := c.currencyByID[k.CurrencyID]; !ok {
			return errors.ErrConfiguration("constants", fmt.Sprintf("unknown currency id %d", k.CurrencyID))
		}
		c.constantsByID[k.CurrencyID] = k
	}

	c.scheduleByLvl = make(map[int]fees.Schedule, len(c.FeeSchedules))
	for _, s := range c.FeeSchedules {
		if s.ShippingFeeMode == "" {
			s.ShippingFeeMode = fees.ShippingAuto
		}
		if err := s.Validate(); err != nil {
			return err
		}
		if _, dup := c.scheduleByLvl[s.Level]; dup {
			return errors.ErrConfiguration("fee_schedules", fmt.Sprintf("duplicate level %d", s.Level))
		}
		c.scheduleByLvl[s.Level] = s
	}

	for _, p := range c.Promotions {
		if !p.EndAt.IsZero() && !p.EndAt.After(p.StartAt) {
			return errors.ErrConfiguration("promotions", fmt.Sprintf("promotion %d ends before it starts", p.ID))
		}
	}
	return nil
}

// Currency looks a currency up by id.
func (c *Catalog) Currency(id int) (money.Currency, error) {
	cur, ok := c.currencyByID[id]
	if !ok {
		return money.Currency{}, errors.ErrConfiguration("currency", fmt.Sprintf("unknown currency id %d", id))
	}
	return cur, nil
}

// CurrencyByCode looks a currency up by ISO code.
func (c *Catalog) CurrencyByCode(code string) (money.Currency, error) {
	cur, ok := c.currencyByCode[code]
	if !ok {
		return money.Currency{}, errors.ErrConfiguration("currency", fmt.Sprintf("unknown currency '%s'", code))
	}
	return cur, nil
}

// Country looks a country up by id.
func (c *Catalog) Country(id int) (Country, error) {
	country, ok := c.countryByID[id]
	if !ok {
		return Country{}, errors.ErrConfiguration("country", fmt.Sprintf("unknown country id %d", id))
	}
	return country, nil
}

// CountryCurrency returns a country's settlement currency.
func (c *Catalog) CountryCurrency(country Country) (money.Currency, error) {
	return c.Currency(country.CurrencyID)
}

// ConstantsFor returns the constants for a currency. A currency without an
// entry gets zero constants: no free delivery-protection allowance and no tier discounts.
func (c *Catalog) ConstantsFor(currencyID int) CurrencyConstants {
	if k, ok := c.constantsByID[currencyID]; ok {
		return k
	}
	return CurrencyConstants{CurrencyID: currencyID}
}

// Schedule returns the fee schedule for a seller level. A seller with no
// assigned schedule (level 0) gets the default one unless level 0 is
// configured; any other unknown level is a configuration error.
func (c *Catalog) Schedule(level int) (fees.Schedule, error) {
	if s, ok := c.scheduleByLvl[level]; ok {
		return s, nil
	}
	if level == 0 {
		return fees.DefaultSchedule(), nil
	}
	return fees.Schedule{}, errors.ErrConfiguration("fee_schedules", fmt.Sprintf("unknown seller level %d", level))
}
