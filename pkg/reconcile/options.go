package reconcile

// Option is a functional option for configuring a Reconciler
type Option func(*reconciler)

// WithIgnoredFields sets payload fields to skip during field-level
// classification. Ignored fields keep their present/missing state but are
// never marked changed.
func WithIgnoredFields(fields ...string) Option {
	return func(r *reconciler) {
		for _, field := range fields {
			r.ignoreFields[field] = true
		}
	}
}

// WithGroupColumn overrides the name of the group back-reference column
// appended to the diff report.
func WithGroupColumn(name string) Option {
	return func(r *reconciler) {
		if name != "" {
			r.groupColumn = name
		}
	}
}
