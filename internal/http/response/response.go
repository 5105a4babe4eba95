package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/versatil/versatil-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondErr writes err using its *apierr.Error status and code. Anything
// else is a 500 whose message is not exposed.
func RespondErr(c *gin.Context, err error) {
	if ae, ok := apierr.As(err); ok && ae.Status != 0 {
		RespondError(c, ae.Status, ae.Code, ae)
		return
	}
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, apierr.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apierr.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, apierr.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, apierr.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, apierr.ErrInvalidArgument):
		status, code = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, apierr.ErrProvider):
		status, code = http.StatusBadGateway, "provider_error"
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		RespondError(c, status, code, errors.New("internal server error"))
		return
	}
	RespondError(c, status, code, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
