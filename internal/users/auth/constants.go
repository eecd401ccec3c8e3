// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package auth

// # Client-Facing Messages
//
// Authentication failures share deliberately generic wording. The true reason
// (unknown email, wrong password, blocked or deleted account) is carried
// internally on the error cause and logged, never sent to the caller.
const (
	MsgInvalidCredentials = "Invalid login credentials"
	MsgAccountUnavailable = "Account is unavailable"
	MsgInvalidToken       = "Token is invalid or expired"
	MsgInvalidRefresh     = "Refresh token is invalid or expired"
	MsgCannotValidate     = "Could not validate credentials"
	MsgOldPasswordWrong   = "Old password is incorrect"
	MsgEmailTaken         = "A user with this email already exists"
)
