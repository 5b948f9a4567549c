package products

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrColorNotSelected indicates an inventory row for a color outside the product's color set.
	ErrColorNotSelected = errors.New("products: color is not selected")
	// ErrInvalidSize indicates a size outside the size catalog.
	ErrInvalidSize = errors.New("products: unknown size")
	// ErrInvalidStock indicates a stock value that is not a whole number of at least one.
	ErrInvalidStock = errors.New("products: invalid stock")
	// ErrDuplicateInventory indicates an inventory row for an existing (color, size) pair.
	ErrDuplicateInventory = errors.New("products: inventory row already exists")
	// ErrInvalidOption indicates a category, material or gender outside the catalog.
	ErrInvalidOption = errors.New("products: invalid option")
	// ErrIncomplete indicates the draft failed the validity check.
	ErrIncomplete = errors.New("products: draft is incomplete")
	// ErrSubmitInProgress indicates a second submission while one is still running.
	ErrSubmitInProgress = errors.New("products: submission already in progress")
	// ErrNotFound indicates the backend has no product with the requested identifier.
	ErrNotFound = errors.New("products: product not found")
	// ErrUnavailable indicates the backend could not be reached.
	ErrUnavailable = errors.New("products: backend unavailable")
)

const (
	msgRequiredFields  = "Please fill in all required fields"
	msgInvalidStock    = "Please enter a valid quantity"
	msgDuplicateRow    = "This color and size combination already exists. Remove it first to change the stock."
	msgColorNotChosen  = "Please select a color that has been added to the product"
	msgInvalidSize     = "Please select a valid size"
	msgSelectColor     = "Please select a color"
	msgInvalidHexCode  = "Please enter a valid hex color code"
	msgColorNameNeeded = "Please enter a color name"
	msgColorExists     = "A color with this name already exists"
	msgConnection      = "Failed to connect to the server. Please try again."
	msgSubmitRunning   = "The product is already being saved. Please wait."
	msgGeneric         = "Something went wrong. Please try again."
)

// ValidationError reports a local precondition failure with a user facing message.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap exposes the sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// MissingStockError blocks a create submission while colors lack inventory rows.
type MissingStockError struct {
	Colors []string
}

// Error implements the error interface.
func (e *MissingStockError) Error() string {
	return "Please add stock for the following colors: " + strings.Join(e.Colors, ", ")
}

// BackendError reports a failed call to the product backend.
type BackendError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("products: %s: status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("products: %s: %s", e.Op, e.Message)
}

// Unwrap exposes the underlying transport or sentinel error.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// UserMessage converts err into text suitable for display next to the form.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var validation *ValidationError
	if errors.As(err, &validation) && validation.Message != "" {
		return validation.Message
	}
	var missing *MissingStockError
	if errors.As(err, &missing) {
		return missing.Error()
	}
	var backend *BackendError
	if errors.As(err, &backend) && backend.Message != "" {
		return backend.Message
	}
	switch {
	case errors.Is(err, ErrSubmitInProgress):
		return msgSubmitRunning
	case errors.Is(err, ErrUnavailable):
		return msgConnection
	case errors.Is(err, ErrIncomplete):
		return msgRequiredFields
	}
	return msgGeneric
}
