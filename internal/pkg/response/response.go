// internal/pkg/response/response.go
package response

import (
	"errors"
	"net/http"

	xerrors "tripreel-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Code is the machine-readable outcome carried by every response body.
type Code string

const (
	CodeSuccess           Code = "SU"
	CodeValidationFailed  Code = "VF"
	CodeDuplicateID       Code = "DI"
	CodeDuplicateEmail    Code = "DE"
	CodeDuplicateNickname Code = "DN"
	CodeDuplicatePhone    Code = "DT"
	CodeInvalidPassword   Code = "IP"
	CodeNotExistedUser    Code = "NU"
	CodeSignInFailed      Code = "SF"
	CodeWrongPassword     Code = "WP"
	CodeAuthorization     Code = "AP"
	CodeNoPermission      Code = "NP"
	CodeDatabaseError     Code = "DBE"
)

var messages = map[Code]string{
	CodeSuccess:           "Success",
	CodeValidationFailed:  "Validation Failed",
	CodeDuplicateID:       "Duplicate Id",
	CodeDuplicateEmail:    "Duplicate Email",
	CodeDuplicateNickname: "Duplicate Nickname",
	CodeDuplicatePhone:    "Duplicate Tel Number",
	CodeInvalidPassword:   "Invalid Password",
	CodeNotExistedUser:    "This user does not exist",
	CodeSignInFailed:      "Sign in Failed",
	CodeWrongPassword:     "Wrong Password",
	CodeAuthorization:     "Authorization Failed",
	CodeNoPermission:      "No Permission",
	CodeDatabaseError:     "Database Error",
}

// Message returns the fixed human-readable text for code.
func (c Code) Message() string {
	return messages[c]
}

// Response defines the standard API response format.
type Response struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Success sends SU with payload fields merged into the top-level object.
func Success(c *gin.Context, payload gin.H) {
	body := gin.H{
		"code":    CodeSuccess,
		"message": CodeSuccess.Message(),
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Error aborts the chain and writes the fixed body for code.
func Error(c *gin.Context, status int, code Code) {
	// Abort before writing so later handlers never run.
	c.Abort()
	c.JSON(status, Response{Code: code, Message: code.Message()})
}

// ValidationError sends a 400 VF response for malformed input.
func ValidationError(c *gin.Context) {
	Error(c, http.StatusBadRequest, CodeValidationFailed)
}

// Unauthorized sends the fixed 401 AP body.
func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, CodeAuthorization)
}

// Forbidden sends a 403 NP response.
func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, CodeNoPermission)
}

// DatabaseError sends a 500 DBE response.
func DatabaseError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeDatabaseError)
}

type mapping struct {
	err    error
	status int
	code   Code
}

var errorTable = []mapping{
	{xerrors.ErrDuplicateID, http.StatusBadRequest, CodeDuplicateID},
	{xerrors.ErrDuplicateEmail, http.StatusBadRequest, CodeDuplicateEmail},
	{xerrors.ErrDuplicateNickname, http.StatusBadRequest, CodeDuplicateNickname},
	{xerrors.ErrDuplicatePhone, http.StatusBadRequest, CodeDuplicatePhone},
	{xerrors.ErrInvalidPassword, http.StatusBadRequest, CodeInvalidPassword},
	{xerrors.ErrInvalidInput, http.StatusBadRequest, CodeValidationFailed},
	{xerrors.ErrNotFound, http.StatusBadRequest, CodeNotExistedUser},
	{xerrors.ErrSignInFailed, http.StatusUnauthorized, CodeSignInFailed},
	{xerrors.ErrWrongPassword, http.StatusUnauthorized, CodeWrongPassword},
	{xerrors.ErrUnauthorized, http.StatusUnauthorized, CodeAuthorization},
	{xerrors.ErrForbidden, http.StatusForbidden, CodeNoPermission},
}

// FromError maps a service error onto its HTTP status and code. Anything
// unrecognised is an infrastructure failure: 500 DBE.
func FromError(err error) (int, Code) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, CodeDatabaseError
}

// FailWith writes the mapped error response for err.
func FailWith(c *gin.Context, err error) {
	status, code := FromError(err)
	Error(c, status, code)
}
