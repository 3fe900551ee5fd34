package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Werneck0live/mm-store/internal/models"
)

// GormStoreRepository guarda as lojas na tabela "stores" (postgres em produção, sqlite local).
type GormStoreRepository struct {
	db *gorm.DB
}

func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// Migrate cria/ajusta a tabela stores.
func (r *GormStoreRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&models.Store{})
}

func (r *GormStoreRepository) List(ctx context.Context, f models.StoreFilter) ([]models.Store, error) {
	list := []models.Store{}
	if f.AddressIDs != nil && len(f.AddressIDs) == 0 {
		return list, nil
	}

	// LOWER do SQLite só converte ASCII ("SÃO" != "são"); lá os filtros de
	// texto rodam em Go, depois da query.
	textInGo := r.db.Dialector.Name() == "sqlite"

	q := r.db.WithContext(ctx).Model(&models.Store{})
	if f.Name != "" && !textInGo {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(f.Name))
	}
	if f.CNPJ != "" && !textInGo {
		q = q.Where(`LOWER(cnpj) LIKE ? ESCAPE '\'`, likePattern(f.CNPJ))
	}
	if f.OwnerID != "" {
		q = q.Where("ownerid = ?", f.OwnerID)
	}
	if f.AddressID != "" {
		q = q.Where("addressid = ?", f.AddressID)
	}
	if len(f.AddressIDs) > 0 {
		q = q.Where("addressid IN ?", f.AddressIDs)
	}

	if err := q.Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	if textInGo && (f.Name != "" || f.CNPJ != "") {
		text := models.StoreFilter{Name: f.Name, CNPJ: f.CNPJ}
		out := list[:0]
		for _, st := range list {
			if text.Matches(st) {
				out = append(out, st)
			}
		}
		list = out
	}
	return list, nil
}

func (r *GormStoreRepository) Get(ctx context.Context, id int64) (*models.Store, error) {
	var s models.Store
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *GormStoreRepository) Create(ctx context.Context, s *models.Store) (*models.Store, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	row := *s
	row.ID = 0 // sempre gerado pelo banco
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *GormStoreRepository) Update(ctx context.Context, id int64, p models.StorePatch) (*models.Store, error) {
	var out models.Store
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if p.IsEmpty() {
			return nil
		}
		if err := p.Apply(&out); err != nil {
			return err
		}
		return tx.Model(&models.Store{}).Where("id = ?", id).Updates(patchColumns(p)).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *GormStoreRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Store{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormStoreRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormStoreRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern monta "%termo%" em minúsculas, escapando os curingas do LIKE.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
