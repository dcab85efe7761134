// Package exercises loads breathing exercises from the embedded catalog and
// the user's exercise directory, and keeps them available by id.
package exercises

// Source indicates where an exercise originated from.
type Source int

const (
	// SourceBuiltIn indicates an exercise bundled with the application.
	SourceBuiltIn Source = iota
	// SourceUser indicates an exercise from the user's exercise directory.
	SourceUser
)

// String returns a human-readable representation of the Source.
func (s Source) String() string {
	switch s {
	case SourceBuiltIn:
		return "built-in"
	case SourceUser:
		return "user"
	default:
		return "unknown"
	}
}
