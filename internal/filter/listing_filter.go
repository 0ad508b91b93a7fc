// Package filter composes optional listing search criteria into a single
// conjunctive predicate that can be rendered as SQL or evaluated in process.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/estatehub/internal/models"
)

// ListingFilter is a sparse set of search criteria. Nil fields impose no
// constraint. Boolean flags only constrain when true.
type ListingFilter struct {
	City            *string
	State           *string
	PropertyType    *models.PropertyType
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	MinBeds         *int
	MaxBeds         *int
	PetsAllowed     *bool
	ParkingIncluded *bool

	MinBaths    *decimal.Decimal
	Available   *bool
	PostedAfter *time.Time
	MinRating   *decimal.Decimal
}

// clause is one conjunct. sql uses '?' for its arguments, in order.
type clause struct {
	sql   string
	args  []any
	match func(d *models.ListingDetail) bool
}

// Predicate is the conjunction of the clauses produced by Compose.
// The zero value matches every listing.
type Predicate struct {
	clauses []clause
}

// Compose turns a filter into a predicate. It does not validate ranges:
// min greater than max simply matches nothing.
func Compose(f ListingFilter) Predicate {
	var p Predicate

	if f.City != nil {
		city := *f.City
		p.add("lower(loc.city) = lower(?::text)", []any{city}, func(d *models.ListingDetail) bool {
			return strings.EqualFold(d.Location.City, city)
		})
	}
	if f.State != nil {
		state := *f.State
		p.add("lower(loc.state) = lower(?::text)", []any{state}, func(d *models.ListingDetail) bool {
			return strings.EqualFold(d.Location.State, state)
		})
	}
	if f.PropertyType != nil {
		pt := *f.PropertyType
		p.add("l.property_type = ?", []any{string(pt)}, func(d *models.ListingDetail) bool {
			return d.PropertyType == pt
		})
	}
	if f.MinPrice != nil {
		lo := *f.MinPrice
		p.add("l.price_per_month >= ?", []any{lo}, func(d *models.ListingDetail) bool {
			return d.PricePerMonth.GreaterThanOrEqual(lo)
		})
	}
	if f.MaxPrice != nil {
		hi := *f.MaxPrice
		p.add("l.price_per_month <= ?", []any{hi}, func(d *models.ListingDetail) bool {
			return d.PricePerMonth.LessThanOrEqual(hi)
		})
	}
	if f.MinBeds != nil {
		lo := *f.MinBeds
		p.add("l.beds >= ?", []any{lo}, func(d *models.ListingDetail) bool {
			return d.Beds >= lo
		})
	}
	if f.MaxBeds != nil {
		hi := *f.MaxBeds
		p.add("l.beds <= ?", []any{hi}, func(d *models.ListingDetail) bool {
			return d.Beds <= hi
		})
	}
	if f.PetsAllowed != nil && *f.PetsAllowed {
		p.add("l.is_pets_allowed", nil, func(d *models.ListingDetail) bool {
			return d.IsPetsAllowed
		})
	}
	if f.ParkingIncluded != nil && *f.ParkingIncluded {
		p.add("l.is_parking_included", nil, func(d *models.ListingDetail) bool {
			return d.IsParkingIncluded
		})
	}
	if f.MinBaths != nil {
		lo := *f.MinBaths
		p.add("l.baths >= ?", []any{lo}, func(d *models.ListingDetail) bool {
			return d.Baths.GreaterThanOrEqual(lo)
		})
	}
	if f.Available != nil && *f.Available {
		p.add("l.is_available", nil, func(d *models.ListingDetail) bool {
			return d.IsAvailable
		})
	}
	if f.PostedAfter != nil {
		after := *f.PostedAfter
		p.add("l.posted_date >= ?", []any{after}, func(d *models.ListingDetail) bool {
			return !d.PostedDate.Before(after)
		})
	}
	if f.MinRating != nil {
		lo := *f.MinRating
		p.add("l.average_rating >= ?", []any{lo}, func(d *models.ListingDetail) bool {
			return d.AverageRating.GreaterThanOrEqual(lo)
		})
	}

	return p
}

func (p *Predicate) add(sql string, args []any, match func(d *models.ListingDetail) bool) {
	p.clauses = append(p.clauses, clause{sql: sql, args: args, match: match})
}

// IsEmpty reports whether the predicate is the identity (matches everything).
func (p Predicate) IsEmpty() bool {
	return len(p.clauses) == 0
}

// Len returns the number of conjuncts.
func (p Predicate) Len() int {
	return len(p.clauses)
}

// Matches evaluates the predicate against a loaded listing.
func (p Predicate) Matches(d models.ListingDetail) bool {
	for _, c := range p.clauses {
		if !c.match(&d) {
			return false
		}
	}
	return true
}

// SQL renders the predicate as a WHERE fragment over the aliases l (listings)
// and loc (locations). Placeholders are numbered from firstArg. An empty
// predicate renders as TRUE.
func (p Predicate) SQL(firstArg int) (string, []any) {
	if p.IsEmpty() {
		return "TRUE", nil
	}

	parts := make([]string, 0, len(p.clauses))
	args := make([]any, 0, len(p.clauses))
	n := firstArg

	for _, c := range p.clauses {
		var b strings.Builder
		for _, r := range c.sql {
			if r == '?' {
				fmt.Fprintf(&b, "$%d", n)
				n++
				continue
			}
			b.WriteRune(r)
		}
		parts = append(parts, b.String())
		args = append(args, c.args...)
	}

	return strings.Join(parts, " AND "), args
}
