package handlers

import (
	"errors"
	"strings"

	"github.com/Werneck0live/mm-store/internal/utils"
)

var (
	errAddressBoth    = errors.New("send either addressid or address fields, not both")
	errAddressMissing = errors.New("addressid or address fields (cep, street, number, neighborhood, state, city, complement) are required")
	errInvalidCNPJ    = errors.New("invalid cnpj")
)

// Normaliza o DTO in-place (cnpj só com dígitos, textos sem espaços nas pontas).
func validateCreateDTO(d *StoreCreateDTO) error {
	d.Name = strings.TrimSpace(d.Name)
	d.ImageURL = strings.TrimSpace(d.ImageURL)

	if d.OwnerID == "" {
		return errors.New("ownerid is required")
	}
	if strings.TrimSpace(d.CNPJ) == "" {
		return errors.New("cnpj is required")
	}
	d.CNPJ = utils.SanitizeCNPJ(d.CNPJ)
	if !utils.ValidateCNPJ(d.CNPJ) {
		return errInvalidCNPJ
	}
	if d.Name == "" {
		return errors.New("name is required")
	}

	hasAddr := !d.Input.IsEmpty()
	switch {
	case d.AddressID != "" && hasAddr:
		return errAddressBoth
	case d.AddressID == "" && !hasAddr:
		return errAddressMissing
	}
	return nil
}

func validateUpdateDTO(d *StorePatchDTO) error {
	if d.OwnerID != nil && *d.OwnerID == "" {
		return errors.New("ownerid cannot be empty")
	}
	if d.AddressID != nil && *d.AddressID == "" {
		return errors.New("addressid cannot be empty")
	}
	if d.AddressID != nil && !d.Input.IsEmpty() {
		return errAddressBoth
	}
	if d.CNPJ != nil {
		cnpj := utils.SanitizeCNPJ(*d.CNPJ)
		if !utils.ValidateCNPJ(cnpj) {
			return errInvalidCNPJ
		}
		d.CNPJ = &cnpj
	}
	if d.Name != nil {
		name := strings.TrimSpace(*d.Name)
		if name == "" {
			return errors.New("name cannot be empty")
		}
		d.Name = &name
	}
	if d.ImageURL != nil {
		u := strings.TrimSpace(*d.ImageURL)
		d.ImageURL = &u
	}
	return nil
}
