package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is implemented by every error the service returns on purpose.
// Handlers map it to a status code and a stable machine readable code.
type AppError interface {
	error
	HTTPStatus() int
	Code() string
}

const (
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeInvalidState     = "INVALID_STATE"
	CodeOutOfOrderStep   = "OUT_OF_ORDER_STEP"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeTimeout          = "TIMEOUT"
	CodeInternal         = "INTERNAL_ERROR"
	CodeUnknown          = "UNKNOWN_ERROR"
)

// PermissionError means the actor lacks a capability.
type PermissionError struct {
	Permission string
	Role       string
}

func (e *PermissionError) Error() string {
	if e.Role != "" {
		return fmt.Sprintf("permission denied: role '%s' lacks %s", e.Role, e.Permission)
	}
	return fmt.Sprintf("permission denied: %s required", e.Permission)
}

func (e *PermissionError) HTTPStatus() int {
	return http.StatusForbidden
}

func (e *PermissionError) Code() string {
	return CodePermissionDenied
}

func NewPermissionError(permission, role string) *PermissionError {
	return &PermissionError{Permission: permission, Role: role}
}

// InvalidStateError is returned when the record's status does not allow the operation.
type InvalidStateError struct {
	Resource  string
	ID        string
	State     string
	Operation string
	Reason    string
}

func (e *InvalidStateError) Error() string {
	msg := fmt.Sprintf("cannot %s %s '%s' in state '%s'", e.Operation, e.Resource, e.ID, e.State)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidStateError) HTTPStatus() int {
	return http.StatusConflict
}

func (e *InvalidStateError) Code() string {
	return CodeInvalidState
}

func NewInvalidStateError(resource, id, state, operation string) *InvalidStateError {
	return &InvalidStateError{Resource: resource, ID: id, State: state, Operation: operation}
}

// OutOfOrderStepError is returned when a workflow step is acted on before a lower level resolved.
type OutOfOrderStepError struct {
	Level        int
	PendingLevel int
}

func (e *OutOfOrderStepError) Error() string {
	return fmt.Sprintf("step level %d cannot be acted on while level %d is pending", e.Level, e.PendingLevel)
}

func (e *OutOfOrderStepError) HTTPStatus() int {
	return http.StatusConflict
}

func (e *OutOfOrderStepError) Code() string {
	return CodeOutOfOrderStep
}

func NewOutOfOrderStepError(level, pendingLevel int) *OutOfOrderStepError {
	return &OutOfOrderStepError{Level: level, PendingLevel: pendingLevel}
}

// ValidationError represents invalid input. Fields lists every offending field
// when more than one is reported at once.
type ValidationError struct {
	Field   string
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("validation error on fields [%s]: %s", strings.Join(e.Fields, ", "), e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

func (e *ValidationError) Code() string {
	return CodeValidationFailed
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func NewFieldsValidationError(fields []string, message string) *ValidationError {
	return &ValidationError{Fields: fields, Message: message}
}

// NotFoundError represents a resource that was not found
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

func (e *NotFoundError) Code() string {
	return CodeNotFound
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError covers duplicate keys and stale versions.
type ConflictError struct {
	Resource string
	Field    string
	Value    string
	Message  string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Message)
	}
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("%s already exists with %s='%s'", e.Resource, e.Field, e.Value)
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

func (e *ConflictError) HTTPStatus() int {
	return http.StatusConflict
}

func (e *ConflictError) Code() string {
	return CodeConflict
}

func NewConflictError(resource, field, value string) *ConflictError {
	return &ConflictError{Resource: resource, Field: field, Value: value}
}

// NewStaleVersionError reports a compare-and-swap miss.
func NewStaleVersionError(resource, id string, expected, actual int64) *ConflictError {
	return &ConflictError{
		Resource: resource,
		Field:    "version",
		Value:    fmt.Sprint(expected),
		Message:  fmt.Sprintf("'%s' is at version %d, expected %d", id, actual, expected),
	}
}

// UnauthorizedError represents authentication failures
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unauthorized: %s", e.Reason)
	}
	return "unauthorized"
}

func (e *UnauthorizedError) HTTPStatus() int {
	return http.StatusUnauthorized
}

func (e *UnauthorizedError) Code() string {
	return CodeUnauthorized
}

func NewUnauthorizedError(reason string) *UnauthorizedError {
	return &UnauthorizedError{Reason: reason}
}

// TimeoutError wraps a deadline hit while talking to a backing service.
type TimeoutError struct {
	Operation string
	Cause     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout during %s: %v", e.Operation, e.Cause)
}

func (e *TimeoutError) HTTPStatus() int {
	return http.StatusGatewayTimeout
}

func (e *TimeoutError) Code() string {
	return CodeTimeout
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

func NewTimeoutError(operation string, cause error) *TimeoutError {
	return &TimeoutError{Operation: operation, Cause: cause}
}

// InternalError represents unexpected server errors
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal error: %s (caused by: %v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("internal error: %s", e.Message)
}

func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *InternalError) Code() string {
	return CodeInternal
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{Message: message, Cause: cause}
}

func IsPermission(err error) bool {
	var target *PermissionError
	return errors.As(err, &target)
}

func IsInvalidState(err error) bool {
	var target *InvalidStateError
	return errors.As(err, &target)
}

func IsOutOfOrderStep(err error) bool {
	var target *OutOfOrderStepError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target *UnauthorizedError
	return errors.As(err, &target)
}

func IsTimeout(err error) bool {
	var target *TimeoutError
	return errors.As(err, &target)
}

// GetHTTPStatus returns the HTTP status code for an error
// Returns 500 if the error doesn't implement AppError
func GetHTTPStatus(err error) int {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// GetErrorCode returns the error code for an error
func GetErrorCode(err error) string {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return CodeUnknown
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ToResponse converts an error to an ErrorResponse
func ToResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		Code:    GetErrorCode(err),
		Message: err.Error(),
	}
	var validation *ValidationError
	if errors.As(err, &validation) && len(validation.Fields) > 0 {
		resp.Details = validation.Fields
	}
	return resp
}
