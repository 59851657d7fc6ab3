package domain

// GrantType enumerates token endpoint grant identifiers.
type GrantType string

const (
	GrantTypePassword     GrantType = "password"
	GrantTypeRefreshToken GrantType = "refresh_token"
)

// AuthMethodApplication is the single authentication-method reference stamped on issued claims.
const AuthMethodApplication = "Application"
