package errors

import "errors"

var (
	ErrUnknownLocale     = errors.New("unknown locale")
	ErrEmptyKey          = errors.New("canonical key is empty")
	ErrEmptySlug         = errors.New("slug is empty")
	ErrInvalidSlug       = errors.New("invalid slug")
	ErrMissingLocale     = errors.New("slug missing for locale")
	ErrDuplicateSlug     = errors.New("duplicate slug")
	ErrDuplicateKey      = errors.New("duplicate canonical key")
	ErrMissingKey        = errors.New("required canonical key missing")
	ErrInvalidIndexEntry = errors.New("invalid search index entry")
	ErrInvalidLegacyPath = errors.New("invalid legacy mapping")
	ErrInvalidRewrite    = errors.New("invalid rewrite rule")
	ErrInvalidTimezone   = errors.New("invalid timezone")
	ErrInvalidHost       = errors.New("invalid host")
	ErrInvalidPort       = errors.New("invalid port")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidDSN        = errors.New("invalid database url")
	ErrInvalidPath       = errors.New("invalid path")
	ErrShopNotFound      = errors.New("shop not found")
	ErrDuplicateShopID   = errors.New("duplicate shop id")
	ErrSecretNotFound    = errors.New("secret not found")
	ErrPINNotConfigured  = errors.New("staging pin not configured")
)
