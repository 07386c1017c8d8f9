package balance

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/groupledger/pkg/response"
)

// Handler handles HTTP requests for group balances
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GroupRoutes mounts the balance endpoints on a group router
func (h *Handler) GroupRoutes(r chi.Router) {
	r.Get("/{id}/balances", h.Balances)
	r.Get("/{id}/transfers", h.Transfers)
}

// Balances handles GET /groups/{id}/balances
// @Summary      Get group balances
// @Description  Net balance per member; positive means the member is owed money
// @Tags         balances
// @Produce      json
// @Param        id path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=BalancesResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /groups/{id}/balances [get]
func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	res, err := h.service.GroupBalances(r.Context(), groupID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, res.ToResponse())
}

// Transfers handles GET /groups/{id}/transfers
// @Summary      Suggest settling transfers
// @Description  Payments that would bring every balance in the group to zero; nothing is recorded
// @Tags         balances
// @Produce      json
// @Param        id path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=TransfersResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /groups/{id}/transfers [get]
func (h *Handler) Transfers(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	res, transfers, err := h.service.GroupTransfers(r.Context(), groupID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, res.ToTransfersResponse(transfers))
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrGroupNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrDivisionUndefined):
		response.Unprocessable(w, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Failed to compute balances", "error", err)
		response.InternalError(w, "Failed to compute balances")
	}
}
