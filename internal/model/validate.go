package model

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ValidationError describes the first field of an item report that failed
// validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%q ", field) + fmt.Sprintf(format, args...),
	}
}

// textRule bounds the length of a text field. A zero max means unbounded.
type textRule struct {
	field    string
	value    string
	required bool
	min, max int
}

func (r textRule) check() *ValidationError {
	n := utf8.RuneCountInString(r.value)
	if n == 0 {
		if r.required {
			return invalid(r.field, "is required")
		}
		return nil
	}
	if n < r.min {
		return invalid(r.field, "length must be at least %d characters long", r.min)
	}
	if r.max > 0 && n > r.max {
		return invalid(r.field, "length must be less than or equal to %d characters long", r.max)
	}
	return nil
}

// ValidateItem checks a submitted report field by field, in a fixed order,
// and returns the typed item or the first violation. The owner and report
// timestamp are left for the caller to stamp.
func ValidateItem(in ItemInput) (*Item, error) {
	var dateLostOrFound time.Time

	steps := []func() *ValidationError{
		textRule{field: "itemName", value: in.ItemName, required: true, min: 3, max: 100}.check,
		textRule{field: "category", value: in.Category, required: true, min: 3, max: 50}.check,
		textRule{field: "brand", value: in.Brand, min: 1, max: 50}.check,
		textRule{field: "primaryColor", value: in.PrimaryColor, required: true, min: 3, max: 30}.check,
		func() *ValidationError {
			if in.DateLostOrFound == "" {
				return invalid("dateLostorFound", "is required")
			}
			t, ok := ParseDate(in.DateLostOrFound)
			if !ok {
				return invalid("dateLostorFound", "must be a valid date")
			}
			dateLostOrFound = t
			return nil
		},
		textRule{field: "timeLostorFound", value: in.TimeLostOrFound, max: 10}.check,
		textRule{field: "whereLostorFound", value: in.WhereLostOrFound, required: true, min: 2, max: 30}.check,
		textRule{field: "subcity", value: in.Subcity, required: true, min: 2, max: 20}.check,
		textRule{field: "location", value: in.Location, required: true, min: 3, max: 100}.check,
		textRule{field: "zipcode", value: in.Zipcode, min: 4, max: 10}.check,
		textRule{field: "contactFirstName", value: in.ContactFirstName, required: true, min: 1, max: 50}.check,
		textRule{field: "contactLastName", value: in.ContactLastName, required: true, min: 1, max: 50}.check,
		textRule{field: "contactPhone", value: in.ContactPhone, required: true, max: 15}.check,
		func() *ValidationError {
			if in.ContactEmail == "" {
				return invalid("contactEmail", "is required")
			}
			if !ValidEmail(in.ContactEmail) {
				return invalid("contactEmail", "must be a valid email")
			}
			return nil
		},
		func() *ValidationError {
			if in.Status != "" && !ValidItemStatus(in.Status) {
				return invalid("status", "must be one of [lost, found, returned]")
			}
			return nil
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	status := in.Status
	if status == "" {
		status = ItemStatusLost
	}

	return &Item{
		ItemName:         in.ItemName,
		Category:         in.Category,
		Brand:            in.Brand,
		PrimaryColor:     in.PrimaryColor,
		SecondaryColor:   in.SecondaryColor,
		DateLostOrFound:  dateLostOrFound,
		TimeLostOrFound:  in.TimeLostOrFound,
		AdditionalInfo:   in.AdditionalInfo,
		WhereLostOrFound: in.WhereLostOrFound,
		Location:         in.Location,
		Subcity:          in.Subcity,
		Zipcode:          in.Zipcode,
		ContactFirstName: in.ContactFirstName,
		ContactLastName:  in.ContactLastName,
		ContactPhone:     in.ContactPhone,
		ContactEmail:     in.ContactEmail,
		Status:           status,
	}, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate accepts an ISO 8601 date or timestamp, or milliseconds since the
// Unix epoch. The result is in UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ValidEmail reports whether s is a bare address with a dotted domain.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	return strings.Contains(domain, ".") &&
		!strings.HasPrefix(domain, ".") &&
		!strings.HasSuffix(domain, ".")
}
