package library

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MinYear is the earliest publication year accepted for a book.
const MinYear = 1000

// emailShape accepts anything shaped like something@something.something.
var emailShape = regexp.MustCompile(`^\S+@\S+\.\S+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("bookstatus", func(fl validator.FieldLevel) bool {
		return BookStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("userrole", func(fl validator.FieldLevel) bool {
		return UserRole(fl.Field().String()).Valid()
	})

	return v
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		return "is required"
	case "emailshape":
		return "must be a valid email address"
	case "bookstatus":
		return fmt.Sprintf("must be one of %v", BookStatuses)
	case "userrole":
		return fmt.Sprintf("must be one of %v", UserRoles)
	case "gt":
		return "must be greater than " + fe.Param()
	case "url":
		return "must be a valid URL"
	}
	return "is invalid"
}

// collectFieldErrors runs the struct tags of s and returns field -> message.
func collectFieldErrors(s any) map[string]string {
	fields := map[string]string{}

	err := validate.Struct(s)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fields
	}
	for _, fe := range verrs {
		key := fe.Namespace()
		if i := strings.IndexByte(key, '.'); i >= 0 {
			key = key[i+1:]
		}
		if _, seen := fields[key]; !seen {
			fields[key] = fieldMessage(fe)
		}
	}
	return fields
}

// ValidateBook checks b against the catalog rules as of today.
func ValidateBook(b Book, today Date) error {
	fields := collectFieldErrors(b)
	if b.Year < MinYear || b.Year > today.Year {
		fields["year"] = fmt.Sprintf("must be between %d and %d", MinYear, today.Year)
	}
	if len(fields) > 0 {
		return &ValidationError{Entity: "book", Fields: fields}
	}
	return nil
}

// ValidateUser checks u against the roster rules as of today.
func ValidateUser(u User, today Date) error {
	fields := collectFieldErrors(u)
	switch {
	case u.MemberSince.IsZero():
		fields["memberSince"] = "is required"
	case u.MemberSince.After(today):
		fields["memberSince"] = "must not be in the future"
	}
	if len(fields) > 0 {
		return &ValidationError{Entity: "user", Fields: fields}
	}
	return nil
}
