package services

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/estatehub/internal/models"
)

// ListingUpdate is a sparse update. Each field distinguishes absent (leave
// untouched), null (clear, where the stored field is nullable) and a value.
type ListingUpdate struct {
	Name              models.Optional[string]          `json:"name"`
	Description       models.Optional[string]          `json:"description"`
	PricePerMonth     models.Optional[decimal.Decimal] `json:"pricePerMonth"`
	SecurityDeposit   models.Optional[decimal.Decimal] `json:"securityDeposit"`
	ApplicationFee    models.Optional[decimal.Decimal] `json:"applicationFee"`
	Amenities         models.Optional[[]string]        `json:"amenities"`
	Highlights        models.Optional[[]string]        `json:"highlights"`
	IsPetsAllowed     models.Optional[bool]            `json:"isPetsAllowed"`
	IsParkingIncluded models.Optional[bool]            `json:"isParkingIncluded"`
	Beds              models.Optional[int]             `json:"beds"`
	Baths             models.Optional[decimal.Decimal] `json:"baths"`
	SquareFeet        models.Optional[int]             `json:"squareFeet"`
	PropertyType      models.Optional[string]          `json:"propertyType"`

	Address    models.Optional[string] `json:"address"`
	City       models.Optional[string] `json:"city"`
	State      models.Optional[string] `json:"state"`
	Country    models.Optional[string] `json:"country"`
	PostalCode models.Optional[string] `json:"postalCode"`
}

// Validate checks every present field without looking at stored state.
func (u ListingUpdate) Validate() error {
	fields := fieldErrors{}

	requiredText(fields, "name", u.Name, MaxNameLength)
	requiredText(fields, "address", u.Address, 300)
	requiredText(fields, "city", u.City, 100)
	requiredText(fields, "state", u.State, 100)
	requiredText(fields, "country", u.Country, 100)
	requiredText(fields, "postalCode", u.PostalCode, 20)

	if u.PropertyType.IsNull() {
		fields.add("propertyType", "must not be null")
	} else if v, ok := u.PropertyType.Value(); ok {
		if _, err := models.ParsePropertyType(v); err != nil {
			fields.add("propertyType", "must be one of "+propertyTypeList())
		}
	}

	if u.PricePerMonth.IsNull() {
		fields.add("pricePerMonth", "must not be null")
	} else if v, ok := u.PricePerMonth.Value(); ok {
		if !v.IsPositive() {
			fields.add("pricePerMonth", "must be greater than 0")
		} else {
			checkDecimal(fields, "pricePerMonth", v, moneyPlaces, maxMoney)
		}
	}
	boundedDecimal(fields, "securityDeposit", u.SecurityDeposit, moneyPlaces, maxMoney)
	boundedDecimal(fields, "applicationFee", u.ApplicationFee, moneyPlaces, maxMoney)

	if u.Baths.IsNull() {
		fields.add("baths", "must not be null")
	} else {
		boundedDecimal(fields, "baths", u.Baths, bathsPlaces, maxBaths)
	}

	// Counts are stored as INTEGER
	if u.Beds.IsNull() {
		fields.add("beds", "must not be null")
	} else if v, ok := u.Beds.Value(); ok {
		boundedCount(fields, "beds", v)
	}
	if v, ok := u.SquareFeet.Value(); ok {
		boundedCount(fields, "squareFeet", v)
	}

	if u.IsPetsAllowed.IsNull() {
		fields.add("isPetsAllowed", "must not be null")
	}
	if u.IsParkingIncluded.IsNull() {
		fields.add("isParkingIncluded", "must not be null")
	}

	return fields.err()
}

// IsEmpty reports whether no field is present.
func (u ListingUpdate) IsEmpty() bool {
	return u.Name.IsAbsent() && u.Description.IsAbsent() && u.PricePerMonth.IsAbsent() &&
		u.SecurityDeposit.IsAbsent() && u.ApplicationFee.IsAbsent() && u.Amenities.IsAbsent() &&
		u.Highlights.IsAbsent() && u.IsPetsAllowed.IsAbsent() && u.IsParkingIncluded.IsAbsent() &&
		u.Beds.IsAbsent() && u.Baths.IsAbsent() && u.SquareFeet.IsAbsent() &&
		u.PropertyType.IsAbsent() && u.Address.IsAbsent() && u.City.IsAbsent() &&
		u.State.IsAbsent() && u.Country.IsAbsent() && u.PostalCode.IsAbsent()
}

func (u ListingUpdate) touchesLocation() bool {
	return !u.Address.IsAbsent() || !u.City.IsAbsent() || !u.State.IsAbsent() ||
		!u.Country.IsAbsent() || !u.PostalCode.IsAbsent()
}

// apply merges a validated update into l and loc. It reports whether the
// geocoded part of the address (address, city, state) changed.
func (u ListingUpdate) apply(l *models.Listing, loc *models.Location) (addressChanged bool) {
	setText(&l.Name, u.Name)
	if u.Description.IsNull() {
		l.Description = nil
	} else if v, ok := u.Description.Value(); ok {
		l.Description = &v
	}

	if v, ok := u.PricePerMonth.Value(); ok {
		l.PricePerMonth = v
	}
	setNullableDecimal(&l.SecurityDeposit, u.SecurityDeposit)
	setNullableDecimal(&l.ApplicationFee, u.ApplicationFee)

	if u.Amenities.IsNull() {
		l.Amenities = []string{}
	} else if v, ok := u.Amenities.Value(); ok {
		l.Amenities = dedupe(v)
	}
	if u.Highlights.IsNull() {
		l.Highlights = []string{}
	} else if v, ok := u.Highlights.Value(); ok {
		l.Highlights = dedupe(v)
	}

	if v, ok := u.IsPetsAllowed.Value(); ok {
		l.IsPetsAllowed = v
	}
	if v, ok := u.IsParkingIncluded.Value(); ok {
		l.IsParkingIncluded = v
	}
	if v, ok := u.Beds.Value(); ok {
		l.Beds = v
	}
	if v, ok := u.Baths.Value(); ok {
		l.Baths = v
	}
	if u.SquareFeet.IsNull() {
		l.SquareFeet = nil
	} else if v, ok := u.SquareFeet.Value(); ok {
		l.SquareFeet = &v
	}
	if v, ok := u.PropertyType.Value(); ok {
		if pt, err := models.ParsePropertyType(v); err == nil {
			l.PropertyType = pt
		}
	}

	before := loc.GeocodeQuery()
	setText(&loc.Address, u.Address)
	setText(&loc.City, u.City)
	setText(&loc.State, u.State)
	setText(&loc.Country, u.Country)
	setText(&loc.PostalCode, u.PostalCode)

	return loc.GeocodeQuery() != before
}

func requiredText(fields fieldErrors, name string, o models.Optional[string], limit int) {
	if o.IsNull() {
		fields.add(name, "must not be null")
		return
	}
	v, ok := o.Value()
	if !ok {
		return
	}
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		fields.add(name, "must not be empty")
	case utf8.RuneCountInString(v) > limit:
		fields.add(name, "is too long")
	}
}

func boundedDecimal(fields fieldErrors, name string, o models.Optional[decimal.Decimal], places int32, max decimal.Decimal) {
	v, ok := o.Value()
	if !ok {
		return
	}
	if v.IsNegative() {
		fields.add(name, "must be at least 0")
		return
	}
	checkDecimal(fields, name, v, places, max)
}

func boundedCount(fields fieldErrors, name string, v int) {
	switch {
	case v < 0:
		fields.add(name, "must be at least 0")
	case v > math.MaxInt32:
		fields.add(name, "must be at most 2147483647")
	}
}

func setText(dst *string, o models.Optional[string]) {
	if v, ok := o.Value(); ok {
		*dst = strings.TrimSpace(v)
	}
}

func setNullableDecimal(dst **decimal.Decimal, o models.Optional[decimal.Decimal]) {
	if o.IsNull() {
		*dst = nil
		return
	}
	if v, ok := o.Value(); ok {
		*dst = &v
	}
}

func propertyTypeList() string {
	types := models.PropertyTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
