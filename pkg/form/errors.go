package form

import "errors"

var (
	// ErrNameRequired is returned by Submit in create mode when no name was
	// entered.
	ErrNameRequired = errors.New("form: name is required")
	// ErrNameExists is returned by Submit in create mode when the name is
	// already taken.
	ErrNameExists = errors.New("form: name already exists")
	// ErrRemoveNotConfirmed is returned when ConfirmRemove runs without an
	// open confirmation dialog.
	ErrRemoveNotConfirmed = errors.New("form: remove not confirmed")
	// ErrRemoveUnavailable is returned when the form cannot remove its entry
	// (create mode or no remover).
	ErrRemoveUnavailable = errors.New("form: remove unavailable")
	// ErrUpsertUnavailable is returned by Submit when no upserter is set.
	ErrUpsertUnavailable = errors.New("form: upsert unavailable")
	// ErrUnknownField is returned when a helper targets a missing field.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrFieldCategory is returned when a helper does not fit the field's
	// category.
	ErrFieldCategory = errors.New("form: helper does not fit field category")
	// ErrUnknownOption is returned when a select helper gets an option the
	// field does not offer.
	ErrUnknownOption = errors.New("form: unknown option")
)

// DisplayError is implemented by collaborator errors that carry a message
// meant for the operator.
type DisplayError interface {
	DisplayMessage() string
}

var validationMessages = map[error]string{
	ErrNameRequired: "name is required",
	ErrNameExists:   "name already exists",
}

// FormatError turns err into the single line shown in an error notice.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	for sentinel, msg := range validationMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	var display DisplayError
	if errors.As(err, &display) {
		if msg := display.DisplayMessage(); msg != "" {
			return msg
		}
	}
	return err.Error()
}
