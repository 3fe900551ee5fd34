package handlers

import (
	"github.com/Werneck0live/mm-store/internal/address"
	"github.com/Werneck0live/mm-store/internal/models"
)

// Criação: addressid OU os campos de endereço (cep, street, ...), que viram um
// registro no mm-address antes da loja ser gravada.
type StoreCreateDTO struct {
	ID        *int64       `json:"id,omitempty"` // somente leitura; ignorado
	OwnerID   models.RefID `json:"ownerid"`
	AddressID models.RefID `json:"addressid"`
	CNPJ      string       `json:"cnpj"`
	Name      string       `json:"name"`
	ImageURL  string       `json:"imageurl"`
	address.Input
}

// Update parcial; ponteiros distinguem "omitido" de "informado".
type StorePatchDTO struct {
	ID        *int64        `json:"id,omitempty"` // somente leitura; ignorado
	OwnerID   *models.RefID `json:"ownerid,omitempty"`
	AddressID *models.RefID `json:"addressid,omitempty"`
	CNPJ      *string       `json:"cnpj,omitempty"`
	Name      *string       `json:"name,omitempty"`
	ImageURL  *string       `json:"imageurl,omitempty"`
	address.Input
}

func (d StorePatchDTO) toPatch() models.StorePatch {
	return models.StorePatch{
		OwnerID:   d.OwnerID,
		AddressID: d.AddressID,
		CNPJ:      d.CNPJ,
		Name:      d.Name,
		ImageURL:  d.ImageURL,
	}
}

// Resposta de erro vinda do mm-address, repassada ao cliente.
type upstreamErrorDTO struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstream_status"`
	UpstreamBody   any    `json:"upstream_body"`
}
