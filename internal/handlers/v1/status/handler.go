package status

import (
	"errors"
	"net/http"

	"github.com/carson-networks/budget-ledger/internal/logging"
)

type stopper interface {
	Stopped() bool
}

type Handler struct {
	Operator    stopper
	StorageMode string
}

func NewHandler(op stopper, storageMode string) Handler {
	return Handler{Operator: op, StorageMode: storageMode}
}

func (h *Handler) Handler(w http.ResponseWriter, req *http.Request, logData *logging.LogData) error {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("status: method not GET")
	}

	logData.AddData("storage", h.StorageMode)
	if h.Operator.Stopped() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return errors.New("status: operator stopped")
	}

	w.WriteHeader(http.StatusOK)
	return nil
}
