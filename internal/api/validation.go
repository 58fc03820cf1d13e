package api

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var registerOnce sync.Once

// RegisterValidators adds custom binding tags to gin's validator engine:
//   - notblank: string must contain a non-whitespace character
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			// Only fails on a duplicate or malformed tag name, which is a programming error
			if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
				panic(err)
			}
		}
	})
}
