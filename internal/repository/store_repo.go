package repository

import (
	"context"
	"errors"

	"github.com/Werneck0live/mm-store/internal/models"
)

var ErrNotFound = errors.New("store not found")

// StoreRepository é o contrato comum aos backends (postgres/sqlite via gorm, mongo).
type StoreRepository interface {
	List(ctx context.Context, f models.StoreFilter) ([]models.Store, error)
	Get(ctx context.Context, id int64) (*models.Store, error)
	Create(ctx context.Context, s *models.Store) (*models.Store, error)
	Update(ctx context.Context, id int64, p models.StorePatch) (*models.Store, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
	Close() error
}

// patchColumns traduz o patch para o mapa coluna -> valor usado no UPDATE/$set.
func patchColumns(p models.StorePatch) map[string]any {
	cols := make(map[string]any, 5)
	if p.OwnerID != nil {
		cols["ownerid"] = string(*p.OwnerID)
	}
	if p.AddressID != nil {
		cols["addressid"] = string(*p.AddressID)
	}
	if p.CNPJ != nil {
		cols["cnpj"] = *p.CNPJ
	}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.ImageURL != nil {
		cols["imageurl"] = *p.ImageURL
	}
	return cols
}
