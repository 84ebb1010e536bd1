package dedupe

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithCaseFolding treats keys that differ only in case as the same key.
// Output paths need this on case-insensitive file systems.
func WithCaseFolding() Option {
	return func(d *inMemoryDeduper) {
		d.fold = true
	}
}
