package models

import (
	"strings"
)

// Store é a única entidade persistida pelo serviço.
// OwnerID e AddressID referenciam registros de outros serviços e não são validados aqui.
type Store struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" bson:"_id" json:"id"`
	OwnerID   RefID  `gorm:"column:ownerid;size:255;not null;index" bson:"ownerid" json:"ownerid"`
	AddressID RefID  `gorm:"column:addressid;size:255;not null;index" bson:"addressid" json:"addressid"`
	CNPJ      string `gorm:"column:cnpj;size:14;not null" bson:"cnpj" json:"cnpj"` // armazenado normalizado (apenas dígitos)
	Name      string `gorm:"column:name;size:255;not null" bson:"name" json:"name"`
	ImageURL  string `gorm:"column:imageurl;size:255" bson:"imageurl,omitempty" json:"imageurl,omitempty"`
}

func (Store) TableName() string {
	return "stores"
}

// Validate confere os campos obrigatórios.
func (s *Store) Validate() error {
	switch {
	case strings.TrimSpace(string(s.OwnerID)) == "":
		return NewValidationError("ownerid", "ownerid is required")
	case strings.TrimSpace(string(s.AddressID)) == "":
		return NewValidationError("addressid", "addressid is required")
	case strings.TrimSpace(s.CNPJ) == "":
		return NewValidationError("cnpj", "cnpj is required")
	case strings.TrimSpace(s.Name) == "":
		return NewValidationError("name", "name is required")
	}
	if len(s.CNPJ) > 14 {
		return NewValidationError("cnpj", "cnpj must have at most 14 characters")
	}
	if len(s.Name) > 255 {
		return NewValidationError("name", "name must have at most 255 characters")
	}
	if len(s.ImageURL) > 255 {
		return NewValidationError("imageurl", "imageurl must have at most 255 characters")
	}
	return nil
}

// StorePatch é a allow-list de campos mutáveis; nil = campo omitido.
type StorePatch struct {
	OwnerID   *RefID
	AddressID *RefID
	CNPJ      *string
	Name      *string
	ImageURL  *string
}

func (p StorePatch) IsEmpty() bool {
	return p.OwnerID == nil && p.AddressID == nil && p.CNPJ == nil && p.Name == nil && p.ImageURL == nil
}

// Apply copia para s apenas os campos presentes no patch e revalida o resultado.
func (p StorePatch) Apply(s *Store) error {
	if p.OwnerID != nil {
		s.OwnerID = *p.OwnerID
	}
	if p.AddressID != nil {
		s.AddressID = *p.AddressID
	}
	if p.CNPJ != nil {
		s.CNPJ = *p.CNPJ
	}
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.ImageURL != nil {
		s.ImageURL = *p.ImageURL
	}
	return s.Validate()
}

// StoreFilter combina os filtros com AND.
// Name e CNPJ: substring sem diferenciar maiúsculas; OwnerID e AddressID: igualdade.
// AddressIDs != nil restringe ao conjunto informado (conjunto vazio não casa nada).
type StoreFilter struct {
	Name       string
	CNPJ       string
	OwnerID    string
	AddressID  string
	AddressIDs []string
}

func (f StoreFilter) Matches(s Store) bool {
	if f.Name != "" && !containsFold(s.Name, f.Name) {
		return false
	}
	if f.CNPJ != "" && !containsFold(s.CNPJ, f.CNPJ) {
		return false
	}
	if f.OwnerID != "" && string(s.OwnerID) != f.OwnerID {
		return false
	}
	if f.AddressID != "" && string(s.AddressID) != f.AddressID {
		return false
	}
	if f.AddressIDs != nil {
		found := false
		for _, id := range f.AddressIDs {
			if string(s.AddressID) == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
