package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// RegisterValidators installs the catalog tags on gin's validator.
// It is safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("genre", validGenre); err != nil {
		return err
	}
	return v.RegisterValidation("sortable", validSortField)
}

func validGenre(fl validator.FieldLevel) bool {
	return book.Genre(fl.Field().String()).IsValid()
}

func validSortField(fl validator.FieldLevel) bool {
	return book.IsSortable(fl.Field().String())
}
