package notification

import "errors"

// Notification domain errors
var (
	ErrDispatchFailure = errors.New("outbound message dispatch failed")
	ErrAlreadySent     = errors.New("notification already sent for this rule, subject and date")
)
