package health

import "context"

// BackendChecker verifies availability of one backend collaborator.
type BackendChecker interface {
	HealthCheck(ctx context.Context) error
}
