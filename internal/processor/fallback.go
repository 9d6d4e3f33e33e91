package processor

import "github.com/contactkeval/option-analytics/internal/logger"

// Strategy is one step in an ordered fallback chain: a name for the
// logs and a function producing either a result or the reason to move
// on to the next step.
type Strategy[T any] struct {
	Name string
	Run  func() (T, error)
}

// RunFallbacks tries each strategy in order and returns the first
// success. Failures are logged as warnings; when every strategy fails
// the last error is returned.
func RunFallbacks[T any](what string, strategies []Strategy[T]) (T, error) {
	var zero T
	var lastErr error

	for i, s := range strategies {
		out, err := s.Run()
		if err == nil {
			if i > 0 {
				logger.Infof("%s: degraded to %s", what, s.Name)
			}
			return out, nil
		}
		lastErr = err
		logger.Warnf("%s: %s failed: %v", what, s.Name, err)
	}
	return zero, lastErr
}
