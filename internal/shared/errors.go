package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Pipeline errors
	ErrTaskFetch      = fmt.Errorf("chart snapshot fetch failed")
	ErrMalformedChart = fmt.Errorf("malformed chart snapshot")
	ErrRowEnrichment  = fmt.Errorf("track enrichment failed")
	ErrCredential     = fmt.Errorf("credential acquisition failed")
	ErrOutputWrite    = fmt.Errorf("report write failed")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrUnauthorized       = fmt.Errorf("unauthorized")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTrackNotFound      = fmt.Errorf("track not found")
	ErrRunNotFound        = fmt.Errorf("run not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
