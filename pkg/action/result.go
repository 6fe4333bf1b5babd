// Package action defines the typed outcome returned by storefront action handlers.
package action

import (
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type Kind string

const (
	KindSuccess  Kind = "success"
	KindRedirect Kind = "redirect"
	KindError    Kind = "error"
)

// FallbackMessage is reported when an error carries no usable text.
const FallbackMessage = "an error occurred"

// Message is the payload of mutation results.
type Message struct {
	Message string `json:"message"`
}

// Result is one of: a value, a redirect to a route path, or an error.
// Mutations report failures as a Success carrying a Message with the error text,
// while Error is reserved for unexpected read failures.
type Result[T any] struct {
	kind   Kind
	value  T
	path   string
	err    error
	failed bool
}

func Success[T any](value T) Result[T] {
	return Result[T]{kind: KindSuccess, value: value}
}

func Redirect[T any](path string) Result[T] {
	return Result[T]{kind: KindRedirect, path: path}
}

func Error[T any](err error) Result[T] {
	if err == nil {
		err = pkgerrors.New(pkgerrors.CodeInternal, FallbackMessage)
	}
	return Result[T]{kind: KindError, err: err}
}

// Failure renders err into a Message result.
func Failure(err error) Result[Message] {
	res := Success(Message{Message: RenderError(err)})
	res.failed = true
	res.err = err
	return res
}

// Done wraps a success text into a Message result.
func Done(text string) Result[Message] {
	return Success(Message{Message: text})
}

func (r Result[T]) Kind() Kind {
	if r.kind == "" {
		return KindSuccess
	}
	return r.kind
}

func (r Result[T]) Value() T { return r.value }

func (r Result[T]) RedirectTo() string { return r.path }

func (r Result[T]) Err() error { return r.err }

func (r Result[T]) IsRedirect() bool { return r.Kind() == KindRedirect }

// Failed reports whether the result is an error or a Failure message.
func (r Result[T]) Failed() bool { return r.failed || r.Kind() == KindError }

// RenderError reduces err to the text a caller may see.
func RenderError(err error) string {
	return pkgerrors.Describe(err, FallbackMessage)
}
