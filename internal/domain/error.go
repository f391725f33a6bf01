package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Purchase flow errors
	ErrGatewayUnconfigured = errors.New("payment gateway is not configured")
	ErrOrderCreationFailed = errors.New("order creation failed")
	ErrInvalidOrderConfig  = errors.New("order configuration is invalid")
	ErrSignatureMismatch   = errors.New("payment signature mismatch")
	ErrUnknownOrder        = errors.New("order not found or expired")
	ErrPlanMismatch        = errors.New("order does not match the configured plan")
	ErrAlreadyProcessed    = errors.New("payment already processed")
	ErrSimulationForbidden = errors.New("simulated payments are not allowed in production")
	ErrUnknownPlan         = errors.New("unknown plan tier")
)
