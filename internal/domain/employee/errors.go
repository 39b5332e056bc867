package employee

import "errors"

// Employee domain errors
var (
	ErrEmployeeNotFound       = errors.New("employee not found")
	ErrNotRegistered          = errors.New("you are not registered yet")
	ErrAlreadyRegistered      = errors.New("this chat is already registered")
	ErrPhoneExists            = errors.New("phone number already registered")
	ErrEmployeeDeactivated    = errors.New("employee account is deactivated")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
)
