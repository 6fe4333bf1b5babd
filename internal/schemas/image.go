package schemas

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxImageBytes caps an uploaded product image.
const MaxImageBytes = 1 << 20

// ImageInput is a validated product image upload.
type ImageInput struct {
	Image *File `json:"image"`
}

func (i *ImageInput) decode(raw Input, found *issues) {
	i.Image = raw.file("image")
	if i.Image == nil || (i.Image.Name == "" && i.Image.Size == 0) {
		i.Image = nil
		found.coercionFailed("image", "image is required")
	}
}

func (*ImageInput) messages() map[string]string {
	return map[string]string{
		"size.lte":                "File size must be less than 1MB",
		"content_type.image_type": "File must be an image",
	}
}

func validateImageType(fl validator.FieldLevel) bool {
	return strings.HasPrefix(fl.Field().String(), "image/")
}
