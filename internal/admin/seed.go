package admin

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/Werneck0live/mm-store/internal/models"
	"github.com/Werneck0live/mm-store/internal/utils"
)

//go:embed seeds/stores.json
var storesJSON []byte

type seedItem struct {
	OwnerID   models.RefID `json:"ownerid"`
	AddressID models.RefID `json:"addressid"`
	CNPJ      string       `json:"cnpj"`
	Name      string       `json:"name"`
	ImageURL  string       `json:"imageurl"`
}

// StoreWriter é o que o seed precisa do repositório.
type StoreWriter interface {
	List(ctx context.Context, f models.StoreFilter) ([]models.Store, error)
	Create(ctx context.Context, s *models.Store) (*models.Store, error)
}

// Idempotente: cria se não existir loja com o mesmo cnpj+name; se já existir, ignora.
func SeedStores(ctx context.Context, repo StoreWriter, log *slog.Logger) error {
	return seed(ctx, repo, log, storesJSON)
}

func seed(ctx context.Context, repo StoreWriter, log *slog.Logger, raw []byte) error {
	if log == nil {
		log = slog.Default()
	}
	var items []seedItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}

	created := 0
	for _, s := range items {
		cnpj := utils.SanitizeCNPJ(s.CNPJ)
		if !utils.ValidateCNPJ(cnpj) {
			log.Warn("seed_skip_invalid_cnpj", "raw", s.CNPJ)
			continue
		}
		name := strings.TrimSpace(s.Name)

		// timeout curto por item pra não travar
		ictx, cancel := context.WithTimeout(ctx, 3*time.Second)
		exists, err := storeExists(ictx, repo, cnpj, name)
		if err != nil {
			cancel()
			return err
		}
		if exists {
			cancel()
			log.Info("seed_store_exists", "cnpj", cnpj, "name", name)
			continue
		}

		st := models.Store{
			OwnerID:   s.OwnerID,
			AddressID: s.AddressID,
			CNPJ:      cnpj,
			Name:      name,
			ImageURL:  strings.TrimSpace(s.ImageURL),
		}
		out, err := repo.Create(ictx, &st)
		cancel()
		if err != nil {
			return err
		}
		created++
		log.Info("seed_store_created", "id", out.ID, "cnpj", cnpj)
	}

	log.Info("seed_stores_done", "count", len(items), "created", created)
	return nil
}

// O filtro de cnpj/name é por substring; a comparação exata é feita aqui.
func storeExists(ctx context.Context, repo StoreWriter, cnpj, name string) (bool, error) {
	list, err := repo.List(ctx, models.StoreFilter{CNPJ: cnpj})
	if err != nil {
		return false, err
	}
	for _, s := range list {
		if s.CNPJ == cnpj && strings.EqualFold(s.Name, name) {
			return true, nil
		}
	}
	return false, nil
}
