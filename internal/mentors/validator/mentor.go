package validator

import (
	"errors"
	"fmt"
	"strings"

	"mentorhub/pkg/logger"
	"mentorhub/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type MentorValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewMentorValidator(log *logger.Logger) *MentorValidator {
	return &MentorValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *MentorValidator) Validate(profile *model.MentorProfile) error {
	if err := v.validate.Struct(profile); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *MentorValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var result ValidationErrors
	for _, err := range errs {
		result = append(result, ValidationError{
			Field:   err.Field(),
			Message: messageForTag(err),
		})
	}
	return result
}

func messageForTag(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s", err.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", err.Param())
	case "timezone":
		return "must be a valid IANA timezone"
	case "mongodb":
		return "must be a valid object id"
	default:
		return fmt.Sprintf("failed validation on '%s'", err.Tag())
	}
}
