package service

import "fmt"

// ValidationError reports malformed or inconsistent input tables, such as a
// condition label present in the retention-time table but missing from the
// peak-capacity table. Label comparison is exact: no trimming, no case folding.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// ConfigurationError reports unusable analysis parameters: a missing void or
// gradient-end time, a zero or negative normalization denominator, an empty
// metric selection, a non-positive bin count or peak capacity.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// InsufficientDataError reports that a combination has too few paired,
// non-missing compounds for the requested metric.
type InsufficientDataError struct {
	Metric string
	Needed int
	Got    int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: metric %q needs at least %d paired compounds, got %d", e.Metric, e.Needed, e.Got)
}

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func configurationf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// MetricFailure records a single Combination×metric cell that could not be
// computed. Failures never overwrite other cells and are reported alongside
// the successful results rather than being coerced to zero.
type MetricFailure struct {
	Combination string `json:"combination"`
	Metric      string `json:"metric"`
	Err         error  `json:"-"`
	Message     string `json:"message"`
}
