package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError is a domain failure carrying a stable code and HTTP status
type ServiceError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Is matches service errors by code so sentinels work with errors.Is
func (e *ServiceError) Is(target error) bool {
	var other *ServiceError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

func newServiceError(status int, code, format string, args ...interface{}) *ServiceError {
	return &ServiceError{Status: status, Code: code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrUserNotFound         = newServiceError(http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	ErrOrderNotFound        = newServiceError(http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
	ErrSaleNotFound         = newServiceError(http.StatusNotFound, "SALE_NOT_FOUND", "Sale not found")
	ErrProductNotFound      = newServiceError(http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	ErrCustomerNotFound     = newServiceError(http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found")
	ErrNotificationNotFound = newServiceError(http.StatusNotFound, "NOTIFICATION_NOT_FOUND", "Notification not found")
	ErrRelatedNotFound      = newServiceError(http.StatusNotFound, "RELATED_NOT_FOUND", "Related record could not be resolved")
	ErrInsufficientStock    = newServiceError(http.StatusConflict, "INSUFFICIENT_STOCK", "Not enough stock")
	ErrProductUnavailable   = newServiceError(http.StatusConflict, "PRODUCT_UNAVAILABLE", "Product is not available")
	ErrInvalidTransition    = newServiceError(http.StatusConflict, "INVALID_STATUS_TRANSITION", "Order status transition is not allowed")
	ErrInvalidSetting       = newServiceError(http.StatusBadRequest, "INVALID_SETTING", "Invalid setting")
)

// withMessage returns a copy of base with a more specific message
func withMessage(base *ServiceError, format string, args ...interface{}) *ServiceError {
	return newServiceError(base.Status, base.Code, format, args...)
}
