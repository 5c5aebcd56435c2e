package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/taskflow/taskflow/internal/repository"
	"github.com/taskflow/taskflow/internal/service"
)

// fieldErrors maps form field names to their error messages.
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, message string) {
	fe[field] = append(fe[field], message)
}

// respondValidationFailed renders a 422 with field-level messages.
func respondValidationFailed(c *gin.Context, errs fieldErrors) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"message": "Validation failed",
		"errors":  errs,
	})
}

// respondServiceError maps a service/repository error kind to a status.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
	case errors.Is(err, service.ErrAttachmentWrite):
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to store attachment"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

// bindingErrors converts a gin binding failure into field-level messages.
// fields maps struct field names to form names, messages maps
// "<StructField>.<tag>" to a user-facing message.
func bindingErrors(err error, fields map[string]string, messages map[string]string) fieldErrors {
	out := fieldErrors{}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.add("request", "malformed request")
		return out
	}

	for _, fe := range verrs {
		name, ok := fields[fe.Field()]
		if !ok {
			name = strings.ToLower(fe.Field())
		}
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = "invalid value"
		}
		out.add(name, msg)
	}

	return out
}
