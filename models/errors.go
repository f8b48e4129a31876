package models

import "errors"

// Domain errors shared across controllers, services and repositories.
// Controllers map each of these to a stable HTTP status and error code.
var (
	ErrPropertyNotFound     = errors.New("property not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrWishlistItemNotFound = errors.New("property not found in wishlist")
	ErrInvalidSignature     = errors.New("invalid payment signature")
	ErrInvalidPrice         = errors.New("price must be greater than zero")
	ErrDuplicateRemoteOrder = errors.New("an order already exists for this payment gateway order id")
	ErrPaymentMismatch      = errors.New("order is already paid with a different payment id")
	ErrUpstreamUnavailable  = errors.New("upstream service unavailable")
)
