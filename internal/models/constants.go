package models

const (
	StatusPending   = "Pending"
	StatusPaid      = "Paid"
	StatusFailed    = "Failed"
	StatusCancelled = "Cancelled"
)

const (
	RoleOwner    = "owner"
	RoleCustomer = "customer"
)

const (
	// DateLayout is the calendar-date form accepted for booking ranges.
	DateLayout = "2006-01-02"

	// DefaultRateLimitRequests requests allowed per identity in one window
	DefaultRateLimitRequests = 120

	// DefaultRateLimitWindow window length in seconds
	DefaultRateLimitWindow = 60
)
