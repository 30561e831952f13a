package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/classtime/classtime-api/pkg/errors"
)

// Field-specific input messages surfaced to callers. Only the first failing
// check is reported.
const (
	msgInvalidClassroomID = "Classroom ID invalid or not specified"
	msgInvalidUserID      = "User ID invalid or not specified"
	msgInvalidPostID      = "Post ID invalid or not specified"
	msgInvalidRequestID   = "Request ID invalid or not specified"
	msgInvalidAnswer      = "Answer invalid or not specified"
)

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fmt.Sprintf("%s invalid or not specified", fieldErrs[0].Field())
	}
	return "Invalid input"
}

func failValidation(err error) error {
	return appErrors.Clone(appErrors.ErrValidation, validationMessage(err))
}

func invalidField(message string) error {
	return appErrors.Clone(appErrors.ErrValidation, message)
}

func internalError(err error) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
}
