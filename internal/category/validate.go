package category

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// fieldSet is set when its key appears in the object, whatever the value.
// A key holding null counts as present.
type fieldSet bool

func (f *fieldSet) UnmarshalJSON([]byte) error {
	*f = true
	return nil
}

type brandPresence struct {
	PracticeName fieldSet `json:"practiceName" validate:"required"`
}

type ideaPresence struct {
	ID      fieldSet `json:"id" validate:"required"`
	Title   fieldSet `json:"title" validate:"required"`
	Content fieldSet `json:"content" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON names so reasons match the stored field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkPresence runs struct validation and joins field errors into one reason.
func checkPresence(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return err
	}

	reasons := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		reasons = append(reasons, formatFieldError(e))
	}
	return stderrors.New(strings.Join(reasons, "; "))
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("missing required field: %s", e.Field())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}

// decodeObject unmarshals raw into v, rejecting anything but a JSON object.
func decodeObject(raw json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return stderrors.New("expected a JSON object")
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("invalid JSON object: %w", err)
	}
	return nil
}

func itemReason(i int, err error) string {
	return fmt.Sprintf("item %d: %v", i, err)
}
