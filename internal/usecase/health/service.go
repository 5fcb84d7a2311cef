// Package health aggregates backend availability checks.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all backends are reachable.
	Healthy Status = "ok"
	// Degraded indicates at least one backend check failed.
	Degraded Status = "degraded"
)

// CheckResult represents an individual backend health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks against the backend collaborators.
type Service struct {
	embedding   BackendChecker
	vectorStore BackendChecker
}

// New creates a Service. Either checker can be nil.
func New(embedding, vectorStore BackendChecker) *Service {
	return &Service{embedding: embedding, vectorStore: vectorStore}
}

// Check runs health checks against all configured backends.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.embedding != nil {
		checks["embedding"] = check(ctx, s.embedding)
	}
	if s.vectorStore != nil {
		checks["vector_store"] = check(ctx, s.vectorStore)
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func check(ctx context.Context, c BackendChecker) CheckResult {
	if err := c.HealthCheck(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
