package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Column limits of the listings table.
const (
	moneyPlaces = 2 // NUMERIC(12, 2)
	bathsPlaces = 1 // NUMERIC(4, 1)
)

var (
	maxMoney = decimal.RequireFromString("9999999999.99")
	maxBaths = decimal.RequireFromString("999.9")
)

// newValidator returns a validator that reports JSON field names and compares
// decimals numerically.
func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(f reflect.Value) interface{} {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			val, _ := d.Float64()
			return val
		}
		return nil
	}, decimal.Decimal{})

	return v
}

// validateStruct runs struct tag validation and converts failures to a
// ValidationError.
func validateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	fields := fieldErrors{}
	for _, fe := range verrs {
		fields.add(fieldPath(fe), describe(fe))
	}
	return fields.err()
}

// fieldPath drops the top-level struct name from the namespace, so nested
// fields read as "location.city".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "url":
		return "must be a valid URL"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// checkDecimal rejects values the storage column would round or overflow.
func checkDecimal(fields fieldErrors, name string, d decimal.Decimal, places int32, max decimal.Decimal) {
	if !d.Equal(d.Truncate(places)) {
		fields.add(name, fmt.Sprintf("must have at most %d decimal places", places))
		return
	}
	if d.GreaterThan(max) {
		fields.add(name, "must be at most "+max.String())
	}
}
