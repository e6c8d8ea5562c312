package helpers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gookit/validate"

	"github.com/cambista/ledger/ledger"
)

type Errors struct {
	Errors []string `json:"errors"`
}

func (e Errors) Size() int {
	return len(e.Errors)
}

func Validate(payload interface{}, err_src *Errors) {
	v := validate.Struct(payload)
	if !v.Validate() {
		for _, errs := range v.Errors.All() {
			for _, err := range errs {
				err_src.Errors = append(err_src.Errors, err)
			}
		}
	}
}

// StatusFor maps the ledger error taxonomy onto HTTP statuses.
func StatusFor(err error) int {
	switch ledger.KindOf(err) {
	case ledger.KindNotFound:
		return fiber.StatusNotFound
	case ledger.KindValidation:
		return fiber.StatusUnprocessableEntity
	case ledger.KindConflict:
		return fiber.StatusConflict
	case ledger.KindConsistencyFailure:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func RenderError(c *fiber.Ctx, err error) error {
	return c.Status(StatusFor(err)).JSON(Errors{
		Errors: []string{err.Error()},
	})
}
