package action

import (
	"errors"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestResultVariants(t *testing.T) {
	ok := Success([]string{"a"})
	assert.Equal(t, KindSuccess, ok.Kind())
	assert.Equal(t, []string{"a"}, ok.Value())

	redirect := Redirect[int]("/products")
	assert.True(t, redirect.IsRedirect())
	assert.Equal(t, "/products", redirect.RedirectTo())

	boom := errors.New("db down")
	failed := Error[int](boom)
	assert.Equal(t, KindError, failed.Kind())
	assert.ErrorIs(t, failed.Err(), boom)

	assert.Error(t, Error[int](nil).Err())

	var zero Result[int]
	assert.Equal(t, KindSuccess, zero.Kind())
}

func TestFailureRendersMessage(t *testing.T) {
	res := Failure(pkgerrors.Wrap(pkgerrors.CodeValidation, errors.New("x"), "price must be a positive number"))
	assert.Equal(t, KindSuccess, res.Kind())
	assert.Equal(t, "price must be a positive number", res.Value().Message)
	assert.True(t, res.Failed())
	assert.True(t, pkgerrors.IsCode(res.Err(), pkgerrors.CodeValidation))

	assert.Equal(t, "an error occurred", Failure(nil).Value().Message)
	done := Done("added to favorites")
	assert.Equal(t, "added to favorites", done.Value().Message)
	assert.False(t, done.Failed())
	assert.True(t, Error[int](nil).Failed())
}
