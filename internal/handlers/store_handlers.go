package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Werneck0live/mm-store/internal/address"
	"github.com/Werneck0live/mm-store/internal/models"
	"github.com/Werneck0live/mm-store/internal/repository"
	"github.com/Werneck0live/mm-store/internal/utils"
)

const (
	repoTimeout    = 5 * time.Second
	publishTimeout = 2 * time.Second
)

// pendingAddressID ocupa o addressid enquanto o endereço não foi criado no mm-address.
const pendingAddressID models.RefID = "pending"

type Repository interface {
	List(ctx context.Context, f models.StoreFilter) ([]models.Store, error)
	Get(ctx context.Context, id int64) (*models.Store, error)
	Create(ctx context.Context, s *models.Store) (*models.Store, error)
	Update(ctx context.Context, id int64, p models.StorePatch) (*models.Store, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

type AddressService interface {
	CreateAddress(ctx context.Context, in address.Input) (models.RefID, error)
	UpdateAddress(ctx context.Context, id models.RefID, in address.Input) error
	FindAddressesByCity(ctx context.Context, city string) ([]models.RefID, error)
}

type Publisher interface {
	PublishEvent(ctx context.Context, ev models.StoreEvent) error
	Close() error
}

type StoreHandler struct {
	Repo    Repository
	Address AddressService
	Pub     Publisher // nil = eventos desligados
	Log     *slog.Logger
}

func NewStoreHandler(repo Repository, addr AddressService, pub Publisher, log *slog.Logger) *StoreHandler {
	if log == nil {
		log = slog.Default()
	}
	return &StoreHandler{Repo: repo, Address: addr, Pub: pub, Log: log.With("cmp", "handlers.store")}
}

func (h *StoreHandler) logger() *slog.Logger {
	if h.Log == nil {
		return slog.Default()
	}
	return h.Log
}

// garantir que a requisição venha no padrão /mm-store/{id} com id inteiro positivo
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseFilter(q url.Values) models.StoreFilter {
	f := models.StoreFilter{
		Name:      strings.TrimSpace(q.Get("name")),
		OwnerID:   strings.TrimSpace(q.Get("ownerid")),
		AddressID: strings.TrimSpace(q.Get("addressid")),
	}
	if c := strings.TrimSpace(q.Get("cnpj")); c != "" {
		f.CNPJ = utils.NormalizeCNPJQuery(c)
	}
	return f
}

func (h *StoreHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.Repo.Ping(ctx); err != nil {
		h.logger().Error("health_ping_failed", "err", err)
		utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// /mm-store e /mm-store/
func (h *StoreHandler) Stores(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// /mm-store/{id}
func (h *StoreHandler) StoreByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		utils.NotFound(w)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut, http.MethodPatch:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// /mm-store/city/{city}
func (h *StoreHandler) StoresByCity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	city := strings.TrimSpace(mux.Vars(r)["city"])

	ids, err := h.Address.FindAddressesByCity(r.Context(), city)
	if err != nil {
		h.logger().Warn("address_find_by_city_failed", "city", city, "err", err)
		utils.WriteJSON(w, http.StatusNotFound, []models.Store{})
		return
	}
	if len(ids) == 0 {
		utils.WriteJSON(w, http.StatusNotFound, []models.Store{})
		return
	}

	set := make([]string, len(ids))
	for i, id := range ids {
		set[i] = id.String()
	}

	ctx, cancel := context.WithTimeout(r.Context(), repoTimeout)
	defer cancel()
	list, err := h.Repo.List(ctx, models.StoreFilter{AddressIDs: set})
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, nonNil(list))
}

func (h *StoreHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), repoTimeout)
	defer cancel()

	list, err := h.Repo.List(ctx, parseFilter(r.URL.Query()))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, nonNil(list))
}

func (h *StoreHandler) get(w http.ResponseWriter, r *http.Request, id int64) {
	ctx, cancel := context.WithTimeout(r.Context(), repoTimeout)
	defer cancel()

	s, err := h.Repo.Get(ctx, id)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, s)
}

func (h *StoreHandler) create(w http.ResponseWriter, r *http.Request) {
	var dto StoreCreateDTO
	if err := utils.DecodeStrict(r.Body, &dto); err != nil {
		utils.BadRequest(w, utils.FormatDecodeError(err))
		return
	}
	if err := validateCreateDTO(&dto); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	s := models.Store{
		OwnerID:   dto.OwnerID,
		AddressID: dto.AddressID,
		CNPJ:      dto.CNPJ,
		Name:      dto.Name,
		ImageURL:  dto.ImageURL,
	}

	// Regras locais antes da chamada remota; com campos de endereço o
	// addressid ainda não existe, então valida com um provisório.
	candidate := s
	if !dto.Input.IsEmpty() {
		candidate.AddressID = pendingAddressID
	}
	if err := candidate.Validate(); err != nil {
		h.writeRepoError(w, err)
		return
	}

	// endereço primeiro: se o mm-address recusar, nenhuma loja é gravada
	createdAddress := false
	if !dto.Input.IsEmpty() {
		addrID, err := h.Address.CreateAddress(r.Context(), dto.Input)
		if err != nil {
			h.writeAddressError(w, "address_create_failed", err)
			return
		}
		s.AddressID = addrID
		createdAddress = true
	}

	ctx, cancel := context.WithTimeout(r.Context(), repoTimeout)
	defer cancel()
	created, err := h.Repo.Create(ctx, &s)
	if err != nil {
		if createdAddress {
			// sem compensação: o endereço fica órfão no mm-address
			h.logger().Warn("address_orphaned", "addressid", s.AddressID.String(), "err", err)
		}
		h.writeRepoError(w, err)
		return
	}

	h.logger().Info("store_created", "id", created.ID, "cnpj", created.CNPJ)
	h.publishEvent(models.ActionCreated, created)
	utils.WriteJSON(w, http.StatusCreated, created)
}

func (h *StoreHandler) update(w http.ResponseWriter, r *http.Request, id int64) {
	var dto StorePatchDTO
	if err := utils.DecodeStrict(r.Body, &dto); err != nil {
		utils.BadRequest(w, utils.FormatDecodeError(err))
		return
	}
	if err := validateUpdateDTO(&dto); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	getCtx, cancelGet := context.WithTimeout(r.Context(), repoTimeout)
	existing, err := h.Repo.Get(getCtx, id)
	cancelGet()
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	// Tudo que é validável localmente roda antes da chamada remota:
	// se o mm-address falhar, a loja não é alterada.
	patch := dto.toPatch()
	candidate := *existing
	if err := patch.Apply(&candidate); err != nil {
		h.writeRepoError(w, err)
		return
	}

	if !dto.Input.IsEmpty() {
		if err := h.Address.UpdateAddress(r.Context(), existing.AddressID, dto.Input); err != nil {
			h.writeAddressError(w, "address_update_failed", err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), repoTimeout)
	defer cancel()
	updated, err := h.Repo.Update(ctx, id, patch)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	h.logger().Info("store_updated", "id", id)
	h.publishEvent(models.ActionUpdated, updated)
	utils.WriteJSON(w, http.StatusOK, updated)
}

func (h *StoreHandler) delete(w http.ResponseWriter, r *http.Request, id int64) {
	ctx, cancel := context.WithTimeout(r.Context(), repoTimeout)
	defer cancel()

	// Busca antes de deletar para o evento levar o nome
	s, err := h.Repo.Get(ctx, id)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	if err := h.Repo.Delete(ctx, id); err != nil {
		h.writeRepoError(w, err)
		return
	}

	h.logger().Info("store_deleted", "id", id)
	h.publishEvent(models.ActionDeleted, s)
	w.WriteHeader(http.StatusNoContent)
}

func (h *StoreHandler) writeRepoError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		utils.BadRequest(w, ve.Msg)
	case errors.Is(err, repository.ErrNotFound):
		utils.NotFound(w)
	default:
		h.logger().Error("repository_error", "err", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// Repassa status e corpo do mm-address; falha de transporte vira 502.
func (h *StoreHandler) writeAddressError(w http.ResponseWriter, event string, err error) {
	var ue *address.UpstreamError
	var unavailable *address.UnavailableError
	switch {
	case errors.As(err, &ue):
		h.logger().Warn(event, "upstream_status", ue.StatusCode, "err", err)
		status := ue.StatusCode
		if status < 400 {
			status = http.StatusBadGateway
		}
		utils.WriteJSON(w, status, upstreamErrorDTO{
			Error:          "address service rejected the request",
			UpstreamStatus: ue.StatusCode,
			UpstreamBody:   ue.BodyJSON(),
		})
	case errors.As(err, &unavailable):
		h.logger().Error(event, "err", err)
		utils.WriteError(w, http.StatusBadGateway, "address service unavailable")
	default:
		h.logger().Error(event, "err", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

var actionLabel = map[models.StoreAction]string{
	models.ActionCreated: "Cadastro",
	models.ActionUpdated: "Edição",
	models.ActionDeleted: "Exclusão",
}

func (h *StoreHandler) publishEvent(action models.StoreAction, s *models.Store) {
	if h.Pub == nil || s == nil {
		return
	}
	// Escolhe o nome a exibir
	nome := s.Name
	if nome == "" {
		nome = s.CNPJ
	}
	ev := models.StoreEvent{
		EventID:   uuid.NewString(),
		Action:    action,
		StoreID:   s.ID,
		OwnerID:   s.OwnerID.String(),
		CNPJ:      s.CNPJ,
		Name:      s.Name,
		Message:   fmt.Sprintf("%s de LOJA %s", actionLabel[action], nome),
		Timestamp: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := h.Pub.PublishEvent(ctx, ev); err != nil {
		h.logger().Warn("event_publish_failed", "action", action, "store_id", s.ID, "err", err)
	}
}

func nonNil(list []models.Store) []models.Store {
	if list == nil {
		return []models.Store{}
	}
	return list
}
