// Copyright (C) 2025 fleexta.app <dev@fleexta.app>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package models

import "errors"

// The error taxonomy shared by every layer. Stores translate missing
// rows to ErrNotFound instead of leaking driver errors; handlers map
// these onto HTTP statuses.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("no access to the chat")
	ErrActionForbidden = errors.New("cannot perform this action")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrExhausted       = errors.New("identity namespace exhausted")
)
