package services

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/estatehub/internal/models"
)

// MaxNameLength bounds listing names.
const MaxNameLength = 200

// LocationInput is the address supplied when creating a listing.
type LocationInput struct {
	Address    string `json:"address" validate:"required,max=300"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"required,max=100"`
	Country    string `json:"country" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
}

// CreateListingInput is the payload for Create.
type CreateListingInput struct {
	Name              string           `json:"name" validate:"required,max=200"`
	Description       *string          `json:"description"`
	PricePerMonth     decimal.Decimal  `json:"pricePerMonth" validate:"gt=0"`
	SecurityDeposit   *decimal.Decimal `json:"securityDeposit" validate:"omitempty,gte=0"`
	ApplicationFee    *decimal.Decimal `json:"applicationFee" validate:"omitempty,gte=0"`
	PhotoURLs         []string         `json:"photoUrls" validate:"dive,required"`
	Amenities         []string         `json:"amenities" validate:"dive,required"`
	Highlights        []string         `json:"highlights" validate:"dive,required"`
	IsPetsAllowed     bool             `json:"isPetsAllowed"`
	IsParkingIncluded bool             `json:"isParkingIncluded"`
	Beds              int              `json:"beds" validate:"gte=0,lte=2147483647"`
	Baths             decimal.Decimal  `json:"baths" validate:"gte=0"`
	SquareFeet        *int             `json:"squareFeet" validate:"omitempty,gte=0,lte=2147483647"`
	PropertyType      string           `json:"propertyType" validate:"required"`
	Location          LocationInput    `json:"location"`
}

// checkPrecision validates the decimal fields against their column scale and
// precision. Struct tags only compare magnitudes.
func (in CreateListingInput) checkPrecision() error {
	fields := fieldErrors{}
	checkDecimal(fields, "pricePerMonth", in.PricePerMonth, moneyPlaces, maxMoney)
	if in.SecurityDeposit != nil {
		checkDecimal(fields, "securityDeposit", *in.SecurityDeposit, moneyPlaces, maxMoney)
	}
	if in.ApplicationFee != nil {
		checkDecimal(fields, "applicationFee", *in.ApplicationFee, moneyPlaces, maxMoney)
	}
	checkDecimal(fields, "baths", in.Baths, bathsPlaces, maxBaths)
	return fields.err()
}

func (in CreateListingInput) location() models.Location {
	return models.Location{
		Address:    strings.TrimSpace(in.Location.Address),
		City:       strings.TrimSpace(in.Location.City),
		State:      strings.TrimSpace(in.Location.State),
		Country:    strings.TrimSpace(in.Location.Country),
		PostalCode: strings.TrimSpace(in.Location.PostalCode),
	}
}

func (in CreateListingInput) listing(pt models.PropertyType) models.Listing {
	return models.Listing{
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		PricePerMonth:     in.PricePerMonth,
		SecurityDeposit:   in.SecurityDeposit,
		ApplicationFee:    in.ApplicationFee,
		PhotoURLs:         cloneStrings(in.PhotoURLs),
		Amenities:         dedupe(in.Amenities),
		Highlights:        dedupe(in.Highlights),
		IsPetsAllowed:     in.IsPetsAllowed,
		IsParkingIncluded: in.IsParkingIncluded,
		Beds:              in.Beds,
		Baths:             in.Baths,
		SquareFeet:        in.SquareFeet,
		PropertyType:      pt,
	}
}

// RegisterManagerInput is the payload for ManagerService.Register.
type RegisterManagerInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"max=30"`
}

// dedupe trims tags and drops blanks and repeats, keeping first-seen order.
// Amenities and highlights are sets.
func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
