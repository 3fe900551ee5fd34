package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Werneck0live/mm-store/internal/utils"
)

// NewRouter registra as rotas da API; o middleware de log envolve tudo, inclusive 404.
func NewRouter(h *StoreHandler) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		utils.NotFound(w)
	})

	r.HandleFunc("/healthz", h.Health)

	r.HandleFunc("/mm-store", h.Stores)
	s := r.PathPrefix("/mm-store").Subrouter()
	s.HandleFunc("/", h.Stores)
	s.HandleFunc("/city/{city}", h.StoresByCity)
	s.HandleFunc("/{id}", h.StoreByID)

	return RequestID(AccessLog(r))
}
