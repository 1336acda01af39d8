package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the standard error envelope. Clients map the code to a
// localized message; 500s never carry internal details.
type ErrorBody struct {
	Error string `json:"error"`
}

// Error codes shared across handlers.
const (
	CodeMissingPoolFields        = "MISSING_POOL_FIELDS"
	CodeInvalidDistributionModel = "INVALID_DISTRIBUTION_MODEL"
	CodePoolNotFound             = "POOL_NOT_FOUND_OR_UNAUTHORIZED"
	CodeNoEmployeesInPool        = "NO_EMPLOYEES_IN_POOL"
	CodeTotalHoursZero           = "TOTAL_HOURS_ZERO"
	CodeTotalPercentageZero      = "TOTAL_PERCENTAGE_ZERO"
	CodeTotalPercentageNot100    = "TOTAL_PERCENTAGE_NOT_100"
	CodePoolAlreadyCalculated    = "POOL_ALREADY_CALCULATED"
	CodeUnauthorizedAccess       = "UNAUTHORIZED_ACCESS"
	CodeMissingToken             = "MISSING_TOKEN"
	CodeInvalidToken             = "INVALID_TOKEN"
	CodeInternal                 = "INTERNAL_SERVER_ERROR"
)

// OK sends a 200 JSON response.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 JSON response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// BadRequest sends 400 with an error code.
func BadRequest(c *gin.Context, code string) {
	c.JSON(http.StatusBadRequest, ErrorBody{Error: code})
}

// Unauthorized sends 401 with an error code.
func Unauthorized(c *gin.Context, code string) {
	c.JSON(http.StatusUnauthorized, ErrorBody{Error: code})
}

// Forbidden sends 403 with an error code.
func Forbidden(c *gin.Context, code string) {
	c.JSON(http.StatusForbidden, ErrorBody{Error: code})
}

// NotFound sends 404 with an error code.
func NotFound(c *gin.Context, code string) {
	c.JSON(http.StatusNotFound, ErrorBody{Error: code})
}

// Conflict sends 409 with an error code.
func Conflict(c *gin.Context, code string) {
	c.JSON(http.StatusConflict, ErrorBody{Error: code})
}

// Internal sends 500 with the generic code.
func Internal(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, ErrorBody{Error: CodeInternal})
}
