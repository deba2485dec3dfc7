package main

import (
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/validator"
)

// Validation rules

func validateAddPerson(v *validator.Validator, request requestAddPerson) {
	validatePersonName(v, request.Name)
	validateUsername(v, request.Username)
	validatePassword(v, request.Password)
	if request.Role != 0 {
		validateRole(v, request.Role)
	}
}

func validateCreateNote(v *validator.Validator, request requestCreateNote) {
	validateNoteNumber(v, request.Number)
	validateItemCount(v, request.ItemCount)
	validateVolumeCount(v, request.VolumeCount)

	for _, product := range request.Products {
		validateProductCode(v, product.Code)
		validateProductAmount(v, product.Amount)
	}
}

func validateUpdateNote(v *validator.Validator, request requestUpdateNote) {
	if request.ItemCount != nil {
		validateItemCount(v, *request.ItemCount)
	}
	if request.VolumeCount != nil {
		validateVolumeCount(v, *request.VolumeCount)
	}
	if request.Destination != nil {
		v.CheckField(validator.MaxRunes(*request.Destination, 200), "destination", "must be at most 200 characters")
	}
}

func validatePersonName(v *validator.Validator, name string) {
	v.CheckField(validator.NotBlank(name), "name", "cannot be blank")
	v.CheckField(validator.MaxRunes(name, 100), "name", "must be at most 100 characters")
}

func validateUsername(v *validator.Validator, username string) {
	v.CheckField(validator.NotBlank(username), "username", "cannot be blank")
	v.CheckField(validator.MaxRunes(username, 50), "username", "must be at most 50 characters")
}

func validatePassword(v *validator.Validator, password string) {
	v.CheckField(validator.NotBlank(password), "password", "cannot be blank")
	v.CheckField(validator.Between(len(password), 4, 72), "password", "must be between 4 and 72 bytes")
}

func validateRole(v *validator.Validator, role model.Role) {
	v.CheckField(
		validator.In(role, model.RoleSeparator, model.RoleConferent, model.RoleApprover),
		"role",
		"is not a known role",
	)
}

func validateNoteNumber(v *validator.Validator, number string) {
	v.CheckField(validator.NotBlank(number), "number", "cannot be blank")
	v.CheckField(validator.MaxRunes(number, 50), "number", "must be at most 50 characters")
}

func validateItemCount(v *validator.Validator, itemCount int) {
	v.CheckField(itemCount >= 0, "itemCount", "must not be negative")
}

func validateVolumeCount(v *validator.Validator, volumeCount int) {
	v.CheckField(volumeCount >= 0, "volumeCount", "must not be negative")
}

func validateProductCode(v *validator.Validator, code string) {
	v.CheckField(validator.NotBlank(code), "products", "product code cannot be blank")
}

func validateProductAmount(v *validator.Validator, amount int) {
	v.CheckField(amount >= 0, "products", "product amount must not be negative")
}
