package controller

import (
	"sync"

	"coursehub_backend/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidations adds the custom binding tags used by the request structs:
//   - evaltype: the value is one of the evaluation types
func RegisterValidations() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("evaltype", func(fl validator.FieldLevel) bool {
			return model.EvaluationType(fl.Field().String()).Valid()
		})
	})
}
