package domain

// Interceptor inspects a message of type K. A non-nil error rejects the
// message and stops the chain.
type Interceptor[K any] interface {
	Apply(msg *K) error
}

// Interceptors applies a list of interceptors in order.
type Interceptors[K any] struct {
	Interceptors []Interceptor[K]
}

// Apply runs every interceptor on msg and returns the first error.
// Interceptors after a failing one are not run, so a stateful interceptor
// placed last only observes messages accepted by all earlier ones.
func (i *Interceptors[K]) Apply(msg *K) error {
	for _, interceptor := range i.Interceptors {
		if err := interceptor.Apply(msg); err != nil {
			return err
		}
	}

	return nil
}

// WithInterceptors creates a chain from the given interceptors.
//
//	chain := WithInterceptors[SampleRecord](
//	    NewFiniteValuesValidator(),
//	    NewIntervalLimiter(clk, RelayInterval),
//	)
//	err := chain.Apply(&record)
func WithInterceptors[K any](interceptors ...Interceptor[K]) *Interceptors[K] {
	return &Interceptors[K]{Interceptors: interceptors}
}
