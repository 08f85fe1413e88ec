package common

// AuthorizationHeaderName carries "Bearer <token>" on API requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

// IdempotencyKeyHeaderName lets clients safely retry POST requests.
const IdempotencyKeyHeaderName = "Idempotency-Key"

// RequestIDHeaderName is echoed back on every HTTP response.
const RequestIDHeaderName = "X-Request-ID"

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Device statuses.
const (
	DeviceAvailable   = "available"
	DeviceUnavailable = "unavailable"
	DeviceMaintenance = "maintenance"
)

// BookingConfirmed is the only persisted booking status; cancellation deletes
// the record.
const BookingConfirmed = "confirmed"
