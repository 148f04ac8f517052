/*
Package errors provides semantic error types for the RecordStore library.

The package defines the failure taxonomy of the mapping layer with specific types
that can be checked using the standard errors.Is() function or the provided helper
functions.

Common Errors:

	var (
	    ErrNotFound             = errors.New("record not found")
	    ErrAlreadyExists        = errors.New("record already exists")
	    ErrInvalidInput         = errors.New("invalid input")
	    ErrConditionFailed      = errors.New("condition check failed")
	    ErrMissingID            = errors.New("missing \"id\" field in record")
	    ErrMissingRequiredField = errors.New("missing required field")
	    ErrStream               = errors.New("stream failed")
	    ErrNotImplemented       = errors.New("method not implemented")
	)

Usage:

	// Required-field validation runs on every serialization
	if err := users.Save(ctx, user); err != nil {
	    if errors.IsMissingRequiredField(err) {
	        return fmt.Errorf("user %s is incomplete: %w", user.ID, err)
	    }
	    return err
	}

	// Create typed errors
	err := errors.NewNotFoundError("test.users", "123")
	err := errors.NewMissingRequiredFieldError("name")
	err := errors.NewStreamError("test", "users", cause)

Not-found is rarely surfaced by the repository: Get reports it as a missing
entity, batch reads drop it and Delete treats it as a no-op. Store clients,
however, return NotFoundError so that callers of the raw client can tell it apart.
*/
package errors
