package domain

import (
	"errors"
	"fmt"
	"math/big"
	"net/netip"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	codePattern = regexp.MustCompile(`^[A-Z]{2}$`)
	macPattern  = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)
	slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

var urlSchemes = map[string]bool{"http": true, "https": true, "ftp": true, "ftps": true}

// fieldMessages maps a failing validation tag to the message reported for it.
var fieldMessages = map[string]string{
	"required":    "this field is required",
	"email":       "enter a valid email address",
	"weburl":      "enter a valid URL",
	"twoupper":    "code must be two uppercase letters",
	"hexpairmac":  "enter a valid MAC address",
	"slugchars":   "slug may only contain letters, numbers, underscores or hyphens",
	"ip":          "enter a valid IPv4 or IPv6 address",
	"status":      "select a valid status",
	"decimal10_2": "ensure there are no more than 10 digits in total and 2 decimal places",
	"gte":         "value must be greater than or equal to 0",
	"lte":         "value must be less than or equal to 100",
	"len":         "value must be exactly 32 characters",
}

// ValidationError collects per-field failures keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})

		mustRegister(v, "twoupper", func(fl validator.FieldLevel) bool {
			return codePattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "hexpairmac", func(fl validator.FieldLevel) bool {
			return macPattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "slugchars", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "weburl", func(fl validator.FieldLevel) bool {
			return validWebURL(fl.Field().String())
		})
		mustRegister(v, "status", func(fl validator.FieldLevel) bool {
			return Status(fl.Field().String()).Valid()
		})
		mustRegister(v, "decimal10_2", func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			if err != nil {
				return false
			}
			return DecimalFits(d, DecimalMaxDigits, DecimalPlaces)
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Validate checks every field rule of the record and returns a
// *ValidationError describing all failures, or nil.
func (r *SampleRecord) Validate() error {
	err := validatorInstance().Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("failed %q validation", fe.Tag())
		}
		if fe.Tag() == "max" {
			msg = fmt.Sprintf("ensure this value has at most %s characters", fe.Param())
		}
		out.Fields[fe.Field()] = msg
	}
	return out
}

// DecimalFits reports whether d can be stored with at most maxDigits total
// digits and places digits after the decimal point.
func DecimalFits(d decimal.Decimal, maxDigits, places int) bool {
	exp := int(d.Exponent())
	coeff := new(big.Int).Abs(d.Coefficient())
	n := len(coeff.String())

	var digits, decimals int
	switch {
	case exp >= 0:
		if coeff.Sign() != 0 {
			digits = n
		}
		digits += exp
	case -exp > n:
		digits, decimals = -exp, -exp
	default:
		digits, decimals = n, -exp
	}
	whole := digits - decimals

	return digits <= maxDigits && decimals <= places && whole <= maxDigits-places
}

// NormalizeIP canonicalizes an IP address string, unpacking IPv4-mapped IPv6
// addresses to their IPv4 form. Invalid input is returned unchanged so that
// validation can report it.
func NormalizeIP(s string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return addr.Unmap().String()
}

func validWebURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return urlSchemes[strings.ToLower(u.Scheme)] && u.Host != ""
}
