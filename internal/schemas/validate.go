// Package schemas turns untyped form input into validated product and image records.
package schemas

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// Input is raw form data: text values keyed by field name plus uploaded files.
type Input struct {
	Values map[string]string
	Files  map[string]*File
}

func (in Input) value(key string) (string, bool) {
	if in.Values == nil {
		return "", false
	}
	v, ok := in.Values[key]
	return v, ok
}

func (in Input) file(key string) *File {
	if in.Files == nil {
		return nil
	}
	return in.Files[key]
}

// File is an uploaded file-like value.
type File struct {
	Name        string                        `json:"name"`
	Size        int64                         `json:"size" validate:"lte=1048576"`
	ContentType string                        `json:"content_type" validate:"image_type"`
	Open        func() (io.ReadCloser, error) `json:"-"`
}

type schema[T any] interface {
	*T
	decode(raw Input, issues *issues)
	messages() map[string]string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	mustRegister(v, "description_words", validateDescriptionWords)
	mustRegister(v, "image_type", validateImageType)
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %s validation: %v", tag, err))
	}
}

// Validate decodes raw into the schema T and checks every rule. On failure the
// returned error has code VALIDATION_ERROR and a message joining each violated
// rule's message with ", " in field order.
func Validate[T any, PT schema[T]](raw Input) (T, error) {
	var out T
	target := PT(&out)

	found := &issues{byField: map[string][]string{}}
	target.decode(raw, found)

	if err := validate.Struct(target); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return out, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
		}
		messages := target.messages()
		for _, fe := range verrs {
			field := topLevelField(fe.Namespace())
			if found.coerced(field) {
				continue
			}
			found.add(field, messageFor(messages, fe))
		}
	}

	if found.empty() {
		return out, nil
	}
	ordered := found.ordered(fieldOrder(reflect.TypeOf(out)))
	return out, pkgerrors.New(pkgerrors.CodeValidation, strings.Join(ordered, ", ")).
		WithDetails(map[string]any{"errors": ordered})
}

type issues struct {
	byField map[string][]string
	failed  map[string]bool
}

func (i *issues) add(field, msg string) {
	i.byField[field] = append(i.byField[field], msg)
}

// coercionFailed records a value that could not be converted; rule checks for
// the field are then skipped.
func (i *issues) coercionFailed(field, msg string) {
	if i.failed == nil {
		i.failed = map[string]bool{}
	}
	i.failed[field] = true
	i.add(field, msg)
}

func (i *issues) coerced(field string) bool {
	return i.failed[field]
}

func (i *issues) empty() bool {
	return len(i.byField) == 0
}

func (i *issues) ordered(order []string) []string {
	out := []string{}
	for _, field := range order {
		out = append(out, i.byField[field]...)
	}
	return out
}

func fieldOrder(t reflect.Type) []string {
	order := make([]string, 0, t.NumField())
	for idx := 0; idx < t.NumField(); idx++ {
		f := t.Field(idx)
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = f.Name
		}
		order = append(order, name)
	}
	return order
}

func topLevelField(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) < 2 {
		return namespace
	}
	return parts[1]
}

func messageFor(messages map[string]string, fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
