package models

import (
	"fmt"
	"strings"
)

// PropertyType is the closed set of listing kinds.
type PropertyType string

const (
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypeHouse     PropertyType = "house"
	PropertyTypeCondo     PropertyType = "condo"
	PropertyTypeTownhouse PropertyType = "townhouse"
	PropertyTypeVilla     PropertyType = "villa"
	PropertyTypeOffice    PropertyType = "office"
	PropertyTypeOther     PropertyType = "other"
)

var propertyTypeNames = map[PropertyType]string{
	PropertyTypeApartment: "Apartment",
	PropertyTypeHouse:     "House",
	PropertyTypeCondo:     "Condo",
	PropertyTypeTownhouse: "Townhouse",
	PropertyTypeVilla:     "Villa",
	PropertyTypeOffice:    "Office",
	PropertyTypeOther:     "Other",
}

// PropertyTypes returns every known property type in display order.
func PropertyTypes() []PropertyType {
	return []PropertyType{
		PropertyTypeApartment,
		PropertyTypeHouse,
		PropertyTypeCondo,
		PropertyTypeTownhouse,
		PropertyTypeVilla,
		PropertyTypeOffice,
		PropertyTypeOther,
	}
}

// ParsePropertyType maps a tag to a PropertyType, case-insensitively.
// Unknown tags are rejected.
func ParsePropertyType(s string) (PropertyType, error) {
	pt := PropertyType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := propertyTypeNames[pt]; !ok {
		return "", fmt.Errorf("unknown property type %q", s)
	}
	return pt, nil
}

// DisplayName returns the presentation name of the property type.
func (p PropertyType) DisplayName() string {
	if name, ok := propertyTypeNames[p]; ok {
		return name
	}
	return string(p)
}

// Valid reports whether p is one of the known property types.
func (p PropertyType) Valid() bool {
	_, ok := propertyTypeNames[p]
	return ok
}
