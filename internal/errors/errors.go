package errors

import "fmt"

// Error tags a failure with the setting that was being applied, so the
// operator can tell which provisioning step went wrong.
type Error struct {
	Setting string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("setting %q failed: %v", e.Setting, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func E(setting string, err error) error {
	return &Error{Setting: setting, Err: err}
}
