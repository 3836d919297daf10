package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Initialization errors (the only class that aborts a stage)
	ErrSourceUnavailable      = fmt.Errorf("source store unreachable")
	ErrDestinationUnavailable = fmt.Errorf("destination store unreachable")
	ErrIdentityUnavailable    = fmt.Errorf("identity provider unreachable")
	ErrStorageUnavailable     = fmt.Errorf("blob storage unreachable")
	ErrServiceUnavailable     = fmt.Errorf("service unavailable")

	// Pipeline artifact errors
	ErrMissingArtifact = fmt.Errorf("pipeline artifact not found")
	ErrInvalidArtifact = fmt.Errorf("pipeline artifact malformed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	// Validation stage outcome
	ErrValidationFailed = fmt.Errorf("validation failed")
)
