// Package config loads rule parameters from an optional TOML file.
//
// A file only needs the keys it changes:
//
//	[wrong_label]
//	cookie_pattern = "^_ga$"
//	expected_label = 2
//
//	[majority]
//	threshold = 20
//	min_ratio = 0.75
//
//	[expiry]
//	factor = 2.0
//	skip = ["CookieConsent", "OptanonConsent"]
//
//	[unclassified]
//	pattern = "unclassified"
package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/cookieaudit/cookieaudit/internal/rules"
)

var (
	// ErrUnknownKey is returned for keys the configuration does not define.
	ErrUnknownKey = errors.New("unknown configuration key")
	// ErrInvalid is returned when a value fails validation.
	ErrInvalid = errors.New("invalid configuration")
)

// File mirrors the layout of the TOML configuration file.
type File struct {
	WrongLabel   WrongLabel   `toml:"wrong_label"`
	Majority     Majority     `toml:"majority"`
	Expiry       Expiry       `toml:"expiry"`
	Unclassified Unclassified `toml:"unclassified"`
}

type WrongLabel struct {
	CookiePattern string `toml:"cookie_pattern" validate:"required,regexp"`
	DomainPattern string `toml:"domain_pattern" validate:"required,regexp"`
	ExpectedLabel int    `toml:"expected_label" validate:"oneof=0 1 2 3 4 99"`
}

type Majority struct {
	Threshold int     `toml:"threshold" validate:"min=1"`
	MinRatio  float64 `toml:"min_ratio" validate:"gt=0,lt=1"`
}

type Expiry struct {
	Factor float64  `toml:"factor" validate:"gt=0"`
	Skip   []string `toml:"skip" validate:"dive,required"`
}

type Unclassified struct {
	Pattern string `toml:"pattern" validate:"required,regexp"`
}

// Default returns the file equivalent of rules.DefaultParams.
func Default() File {
	return FromParams(rules.DefaultParams())
}

// FromParams converts rule parameters to their file layout.
func FromParams(p rules.Params) File {
	return File{
		WrongLabel: WrongLabel{
			CookiePattern: p.KnownCookiePattern,
			DomainPattern: p.KnownDomainPattern,
			ExpectedLabel: p.ExpectedLabel,
		},
		Majority: Majority{
			Threshold: p.MajorityThreshold,
			MinRatio:  p.MajorityMinRatio,
		},
		Expiry: Expiry{
			Factor: p.ExpiryFactor,
			Skip:   append([]string(nil), p.ExpirySkip...),
		},
		Unclassified: Unclassified{Pattern: p.UnclassifiedPattern},
	}
}

// Params converts the file to rule parameters.
func (f File) Params() rules.Params {
	return rules.Params{
		KnownCookiePattern:  f.WrongLabel.CookiePattern,
		KnownDomainPattern:  f.WrongLabel.DomainPattern,
		ExpectedLabel:       f.WrongLabel.ExpectedLabel,
		MajorityThreshold:   f.Majority.Threshold,
		MajorityMinRatio:    f.Majority.MinRatio,
		ExpiryFactor:        f.Expiry.Factor,
		ExpirySkip:          append([]string(nil), f.Expiry.Skip...),
		UnclassifiedPattern: f.Unclassified.Pattern,
	}
}

// Load reads the configuration at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (rules.Params, error) {
	f := Default()
	if path == "" {
		return f.Params(), nil
	}
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return rules.Params{}, fmt.Errorf("error: cannot parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return rules.Params{}, fmt.Errorf("%w in %s: %s", ErrUnknownKey, path, strings.Join(keys, ", "))
	}
	if err := Validate(f); err != nil {
		return rules.Params{}, err
	}
	return f.Params(), nil
}

// Validate checks value ranges and that every pattern compiles.
func Validate(f File) error {
	if err := newValidator().Struct(f); err != nil {
		return formatError(err)
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("toml")
		if name == "" {
			return fld.Name
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
		_, err := regexp.Compile(fl.Field().String())
		return err == nil
	})
	return v
}

func formatError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s %s", fieldPath(e), friendlyMessage(e)))
	}
	sort.Strings(msgs)
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// fieldPath turns "File.wrong_label.cookie_pattern" into
// "wrong_label.cookie_pattern".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "regexp":
		return "must be a valid regular expression"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", e.Param())
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}
