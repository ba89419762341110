package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go-pharmacy-reservation/internal/service"
	"go-pharmacy-reservation/internal/store"
	"go-pharmacy-reservation/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// StockSource serves cached stock figures.
type StockSource interface {
	Stock(ctx context.Context, medicineID int64) (service.StockSnapshot, error)
}

type StockHandler struct {
	cache StockSource
	store *store.Store
	log   *logrus.Logger
}

// NewStockHandler serves stock from cache when one is given, and from the
// store otherwise or on a cache miss.
func NewStockHandler(cache StockSource, st *store.Store, log *logrus.Logger) *StockHandler {
	return &StockHandler{
		cache: cache,
		store: st,
		log:   log,
	}
}

func (h *StockHandler) GetMedicineStock(w http.ResponseWriter, r *http.Request) {
	medicineID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid medicine ID")
		return
	}

	if h.cache != nil {
		snapshot, err := h.cache.Stock(r.Context(), medicineID)
		if err == nil {
			response.Success(w, http.StatusOK, "Stock retrieved from cache", snapshot)
			return
		}
		if !errors.Is(err, service.ErrStockNotCached) {
			h.log.Warnf("Failed to read cached stock of medicine %d: %+v", medicineID, err)
		}
	}

	medicine, err := h.store.Medicine(medicineID)
	if err != nil || medicine.IsDeleted() {
		response.NotFound(w, "Medicine not found")
		return
	}
	response.Success(w, http.StatusOK, "Stock retrieved successfully", service.StockSnapshot{
		MedicineID: medicine.ID,
		PharmacyID: medicine.PharmacyID,
		Available:  medicine.QuantityAvailable,
		Reserved:   medicine.QuantityReserved,
		Status:     string(medicine.Status),
		Version:    medicine.Version,
	})
}
