package domain

// PreferencesNotFoundError is returned by Repository.Get before anything
// has been saved.
type PreferencesNotFoundError struct{}

func (e *PreferencesNotFoundError) Error() string {
	return "preferences not found"
}
