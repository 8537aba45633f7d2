package store

// Store defines the interface for fit record storage.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return ErrNotFound if a record doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// Save stores rec under rec.ID, replacing any record with the same ID.
	Save(rec *Record) error

	// Load retrieves the record with the given ID.
	// Returns ErrNotFound if no such record exists.
	Load(id string) (*Record, error)

	// List returns all records, oldest first.
	List() ([]Record, error)

	// Delete removes the record with the given ID.
	// Returns ErrNotFound if no such record exists.
	Delete(id string) error
}

// ErrNotFound is returned when a requested record does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing record or file.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return "not found: " + e.ID
	}
	return "not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ValidationError represents a record that is missing required data.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
