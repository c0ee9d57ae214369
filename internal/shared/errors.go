package shared

type Error string

// Implement the error interface
func (e Error) Error() string { return string(e) }

//------------
// Definitions
//------------

// cli errors
const (
	ErrorCreateFile = Error("could not create the file")
	ErrorEncodeFile = Error("could not encode to file")
)

// repository errors
const (
	ErrAlreadyExists = Error("already exists")
	ErrNotFound      = Error("not found")
	ErrValidation    = Error("document failed validation")
	ErrConflict      = Error("duplicate key")
	ErrUnsupported   = Error("not supported by this backend")
	ErrInvalidName   = Error("invalid name")
)

// schema and seed errors
const (
	ErrInvalidDefinition = Error("invalid definition")
	ErrMissingReference  = Error("referenced record is missing")
)
