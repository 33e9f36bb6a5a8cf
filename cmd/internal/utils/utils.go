package utils

import (
	"reflect"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func FormatOptionalTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTimestamp(*t)
	return &s
}

func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseTimestamp accepts RFC 3339 with or without fractional seconds and
// always returns UTC.
func ParseTimestamp(rfc string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, rfc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ParseDateBound parses a list filter bound. Full timestamps are used as is.
// A bare date (YYYY-MM-DD) means the start of that day, or its last
// millisecond when endOfDay is set.
func ParseDateBound(raw string, endOfDay bool) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if t, err := ParseTimestamp(raw); err == nil {
		return t, true
	}

	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		day = day.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	return day.UTC(), true
}

// Sanitize trims every string (and *string) field of the struct o points to.
func Sanitize(o any) {
	v := reflect.ValueOf(o)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		panic("sanitize: expected pointer to struct")
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		panic("sanitize: expected struct")
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(sanitizeString(field.String()))

		case reflect.Ptr:
			if !field.IsNil() && field.Elem().Kind() == reflect.String {
				field.Elem().SetString(sanitizeString(field.Elem().String()))
			}
		}
	}
}

func sanitizeString(s string) string {
	return strings.TrimSpace(s)
}
