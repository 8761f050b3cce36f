package orders

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"vegorder/internal/models"
)

const (
	quantityDigits = 5
	quantityPlaces = 2
)

var maxQuantity = decimal.RequireFromString("99999.99")

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Only decimals that passed checkQuantity reach here.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			if d.IsZero() {
				return 0.0
			}
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return v
}

// fieldProblem is one violation keyed by the JSON path it is about.
type fieldProblem struct {
	path    string
	message string
}

type problems []fieldProblem

func (p *problems) add(path, format string, args ...interface{}) {
	*p = append(*p, fieldProblem{path: path, message: path + " " + fmt.Sprintf(format, args...)})
}

// covers reports whether path, or an element or field below it, already has
// a problem. A field that could not be decoded is not also reported as missing.
func (p problems) covers(path string) bool {
	for _, known := range p {
		if path == known.path ||
			strings.HasPrefix(path, known.path+".") ||
			strings.HasPrefix(path, known.path+"[") {
			return true
		}
	}
	return false
}

func (p problems) messages() []string {
	out := make([]string, 0, len(p))
	for _, fp := range p {
		out = append(out, fp.message)
	}
	return out
}

// checkQuantity rejects quantities whose size would make the validator's
// float conversion or rounding expensive, before either runs.
func checkQuantity(q decimal.Decimal) (decimal.Decimal, string) {
	if q.IsNegative() {
		return q, "must be greater than 0"
	}
	return models.CheckAmount(q, quantityDigits, quantityPlaces)
}

func validateRequest(v *validator.Validate, req CreateOrderRequest) error {
	found := slices.Clone(problems(req.decodeErrors))

	checked := req
	checked.Items = slices.Clone(req.Items)
	for i := range checked.Items {
		path := fmt.Sprintf("items[%d].quantity", i)
		quantity, msg := checkQuantity(checked.Items[i].Quantity)
		if msg != "" {
			found.add(path, "%s", msg)
			quantity = decimal.NewFromInt(1)
		}
		checked.Items[i].Quantity = quantity
	}

	if err := v.Struct(checked); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return ValidationError{Fields: []string{err.Error()}}
		}
		for _, fieldError := range validationErrors {
			path := fieldPath(fieldError)
			if found.covers(path) {
				continue
			}
			found = append(found, fieldProblem{path: path, message: fieldMessage(path, fieldError)})
		}
	}

	if len(found) > 0 {
		return ValidationError{Fields: found.messages()}
	}
	return nil
}

func validateMergedLines(lines []orderLine) error {
	var fields []string
	for _, line := range lines {
		if line.Quantity.GreaterThan(maxQuantity) {
			fields = append(fields, fmt.Sprintf("items: combined quantity for product_id %d must be at most %s", line.ProductID, maxQuantity))
		}
	}
	if len(fields) > 0 {
		return ValidationError{Fields: fields}
	}
	return nil
}

// fieldPath turns "CreateOrderRequest.items[0].quantity" into "items[0].quantity".
func fieldPath(fieldError validator.FieldError) string {
	field := fieldError.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	return field
}

func fieldMessage(field string, fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		if fieldError.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fieldError.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fieldError.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fieldError.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fieldError.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fieldError.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
