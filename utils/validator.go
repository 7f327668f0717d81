package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Minimal internal validator to avoid external dependency. Supports:
// - required
// - nameok (letters, numbers, space, hyphen, apostrophe, 1-100 chars)
// - maxlen=N (string length at most N)

var reNameOK = regexp.MustCompile(`^[A-Za-z0-9 \-']{1,100}$`)

// ValidateStruct inspects struct tags `validate:"..."` and returns the first error encountered.
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errors.New("ValidateStruct expects a struct or pointer to struct")
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}
		parts := strings.Split(tag, ",")
		fv := v.Field(i)
		var sval string
		if fv.IsValid() && fv.Kind() == reflect.String {
			sval = fv.String()
		}
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "required" {
				if strings.TrimSpace(sval) == "" {
					return errors.New(field.Name + " is required")
				}
			} else if p == "nameok" {
				if sval != "" && !reNameOK.MatchString(sval) {
					return errors.New(field.Name + " contains invalid characters")
				}
			} else if strings.HasPrefix(p, "maxlen=") {
				if n, err := strconv.Atoi(p[len("maxlen="):]); err == nil && n > 0 && len(sval) > n {
					return errors.New(field.Name + " is too long")
				}
			}
		}
	}
	return nil
}
