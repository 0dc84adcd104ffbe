package services

func applyFuncOptions[T any](entity T, opts ...func(entity T) error) error {
	for _, opt := range opts {
		err := opt(entity)
		if err != nil {
			return err
		}
	}
	return nil
}

// Deref returns the zero value for a nil pointer.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
