package types

import "fmt"

// InvalidDefinitionError reports a malformed or conflicting test definition.
// All such errors are fatal to a generation run.
type InvalidDefinitionError struct {
	Test    string
	Message string
}

func (e *InvalidDefinitionError) Error() string {
	if e.Test == "" {
		return "invalid test definition: " + e.Message
	}
	return fmt.Sprintf("invalid test definition %q: %s", e.Test, e.Message)
}

// NewInvalidDefinition builds an InvalidDefinitionError with a formatted message.
func NewInvalidDefinition(test, format string, args ...interface{}) *InvalidDefinitionError {
	return &InvalidDefinitionError{Test: test, Message: fmt.Sprintf(format, args...)}
}

// InternalError reports an internal consistency fault, such as a directive
// marker surviving expansion. It indicates a missing expansion rule in this
// tool, not a problem with the test definition.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Message
}
