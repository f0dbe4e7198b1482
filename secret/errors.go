package secret

import "errors"

var (
	// ErrVaultUnavailable wraps any vault failure. Lookups treat it as absence.
	ErrVaultUnavailable = errors.New("secret: vault unavailable")

	// ErrVaultNotRegistered indicates a vault name with no factory.
	ErrVaultNotRegistered = errors.New("secret: vault not registered")

	// ErrInvalidKey indicates a key a vault cannot address.
	ErrInvalidKey = errors.New("secret: invalid key")

	// ErrInvalidRegistration indicates an empty name or nil factory.
	ErrInvalidRegistration = errors.New("secret: invalid vault registration")
)
