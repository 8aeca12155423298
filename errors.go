package auth

import (
	"maps"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes are the stable identifiers callers match on. Messages are
// for humans and may change.
const (
	TextCodeValidationFailed    = "auth_validation_failed"
	TextCodeEmptyPassword       = "auth_empty_password"
	TextCodeDuplicateUser       = "auth_duplicate_user"
	TextCodeInvalidCredentials  = "auth_invalid_credentials"
	TextCodeNoToken             = "auth_no_token"
	TextCodeUnauthenticated     = "auth_unauthenticated"
	TextCodeIdentityMissing     = "auth_identity_missing"
	TextCodeForbidden           = "auth_forbidden"
	TextCodeTokenMalformed      = "auth_token_malformed"
	TextCodeTokenExpired        = "auth_token_expired"
	TextCodeHashingFailure      = "auth_hashing_failure"
	TextCodeVerificationFailure = "auth_verification_failure"
	TextCodeSigningFailure      = "auth_signing_failure"
	TextCodeConflict            = "auth_conflict"
	TextCodeCancelled           = "auth_cancelled"
	TextCodeInternal            = "auth_internal"
)

// metadataDetails is the metadata key holding field level validation messages
const metadataDetails = "details"

// ErrValidationFailed is returned when a payload does not match its schema
var ErrValidationFailed = goerrors.New("validation failed", goerrors.CategoryValidation).
	WithTextCode(TextCodeValidationFailed).
	WithCode(goerrors.CodeBadRequest)

// ErrNoEmptyString is returned when hashing an empty secret
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrDuplicateUser is returned on sign-up when the email is already registered
var ErrDuplicateUser = goerrors.New("email already exist", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateUser).
	WithCode(goerrors.CodeConflict)

// ErrConflict is returned by directories when a uniqueness constraint rejects an insert
var ErrConflict = goerrors.New("record already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeConflict).
	WithCode(goerrors.CodeConflict)

// ErrInvalidCredentials is returned for unknown emails and wrong passwords alike
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoToken is returned when the request carries no session cookie
var ErrNoToken = goerrors.New("access denied, no token provided", goerrors.CategoryAuth).
	WithTextCode(TextCodeNoToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnauthenticated is returned when the session token could not be verified
var ErrUnauthenticated = goerrors.New("invalid token", goerrors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(goerrors.CodeUnauthorized)

// ErrIdentityMissing is returned by role checks that run without a verified identity
var ErrIdentityMissing = goerrors.New("access denied, user not authenticated", goerrors.CategoryAuth).
	WithTextCode(TextCodeIdentityMissing).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for bad signatures and broken token structure
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for correctly signed tokens past their expiry
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrForbidden is returned when the identity role is not in the allow-list
var ErrForbidden = goerrors.New("access denied, insufficient permissions", goerrors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(goerrors.CodeForbidden)

// ErrHashingFailure is returned when the password could not be hashed
var ErrHashingFailure = goerrors.New("error hashing password", goerrors.CategoryInternal).
	WithTextCode(TextCodeHashingFailure).
	WithCode(goerrors.CodeInternal)

// ErrVerificationFailure is returned when a stored digest cannot be parsed
var ErrVerificationFailure = goerrors.New("error verifying password", goerrors.CategoryInternal).
	WithTextCode(TextCodeVerificationFailure).
	WithCode(goerrors.CodeInternal)

// ErrSigningFailure is returned when a token could not be signed
var ErrSigningFailure = goerrors.New("failed to sign token", goerrors.CategoryInternal).
	WithTextCode(TextCodeSigningFailure).
	WithCode(goerrors.CodeInternal)

// withSource returns a copy of base with err attached as its source.
// The package level values are never mutated.
func withSource(base *goerrors.Error, err error) *goerrors.Error {
	clone := base.Clone()
	clone.Source = err
	return clone
}

// withMetadata returns a copy of base with meta merged over its metadata.
func withMetadata(base *goerrors.Error, meta map[string]any) *goerrors.Error {
	merged := make(map[string]any, len(base.Metadata)+len(meta))
	maps.Copy(merged, base.Metadata)
	maps.Copy(merged, meta)

	clone := base.Clone()
	clone.Metadata = merged
	return clone
}

func withDetails(base *goerrors.Error, details []string) *goerrors.Error {
	return withMetadata(base, map[string]any{metadataDetails: details})
}

// internalError wraps a collaborator failure. The message is safe to log,
// the source carries the raw cause.
func internalError(err error, message string) *goerrors.Error {
	wrapped := goerrors.Wrap(err, goerrors.CategoryInternal, message)
	wrapped.Category = goerrors.CategoryInternal
	return wrapped.WithTextCode(TextCodeInternal).WithCode(goerrors.CodeInternal)
}

// cancelledError reports a context that ended before the operation finished.
func cancelledError(err error, message string) *goerrors.Error {
	wrapped := goerrors.Wrap(err, goerrors.CategoryOperation, message)
	wrapped.Category = goerrors.CategoryOperation
	return wrapped.WithTextCode(TextCodeCancelled).WithCode(goerrors.CodeInternal)
}

// TextCodeOf returns the text code carried by err, or TextCodeInternal for
// errors that did not come from this package.
func TextCodeOf(err error) string {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.TextCode != "" {
		return rich.TextCode
	}
	return TextCodeInternal
}

// HasTextCode reports whether err carries the given text code.
func HasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	return TextCodeOf(err) == code
}

// StatusOf maps err to the status code returned to clients.
func StatusOf(err error) int {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return http.StatusInternalServerError
	}

	if rich.Code >= http.StatusBadRequest {
		return rich.Code
	}

	switch rich.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsInternalError reports whether err must hide its cause from callers.
func IsInternalError(err error) bool {
	return StatusOf(err) >= http.StatusInternalServerError
}

// DetailsOf returns the field level messages attached to a validation error.
func DetailsOf(err error) []string {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Metadata == nil {
		return nil
	}
	details, _ := rich.Metadata[metadataDetails].([]string)
	return details
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return HasTextCode(err, TextCodeTokenExpired)
}

// IsMalformedError will check for tokens that failed integrity checks
func IsMalformedError(err error) bool {
	return HasTextCode(err, TextCodeTokenMalformed)
}
