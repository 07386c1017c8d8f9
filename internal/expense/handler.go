package expense

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/groupledger/pkg/middleware"
	"github.com/fkhayef/groupledger/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

// GroupRoutes mounts the group-scoped expense endpoints on a group router
func (h *Handler) GroupRoutes(r chi.Router) {
	r.Post("/{id}/expenses", h.CreateInGroup)
	r.Get("/{id}/expenses", h.ListInGroup)
}

// Create handles POST /expenses
// @Summary      Record an expense
// @Description  Record an expense paid by a group member; the payer defaults to the caller
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	h.record(w, r, &req)
}

// CreateInGroup handles POST /groups/{id}/expenses
// @Summary      Record an expense in a group
// @Description  Record an expense in the group named by the path; any group in the body is ignored
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        request body CreateExpenseRequest true "Expense"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/expenses [post]
func (h *Handler) CreateInGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.GroupID = &groupID

	h.record(w, r, &req)
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request, req *CreateExpenseRequest) {
	actorID, _ := middleware.GetUserID(r.Context())

	e, err := h.service.RecordExpense(r.Context(), actorID, req)
	if err != nil {
		writeError(w, r, err, "Failed to record expense")
		return
	}

	response.JSON(w, http.StatusCreated, e.ToResponse())
}

// GetByID handles GET /expenses/{id}
// @Summary      Get expense by ID
// @Tags         expenses
// @Produce      json
// @Param        id path int true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	e, err := h.service.GetExpenseByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Failed to get expense")
		return
	}

	response.JSON(w, http.StatusOK, e.ToResponse())
}

// List handles GET /expenses
// @Summary      List expenses
// @Description  Paginated expenses, newest first, optionally filtered by group and payer
// @Tags         expenses
// @Produce      json
// @Param        group query int false "Group ID"
// @Param        paid_by query int false "Payer user ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /expenses [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	groupID, err := optionalID(r, "group")
	if err != nil {
		response.BadRequest(w, "Invalid group filter")
		return
	}
	paidBy, err := optionalID(r, "paid_by")
	if err != nil {
		response.BadRequest(w, "Invalid paid_by filter")
		return
	}

	h.list(w, r, groupID, paidBy)
}

// ListInGroup handles GET /groups/{id}/expenses
// @Summary      List a group's expenses
// @Tags         expenses
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Router       /groups/{id}/expenses [get]
func (h *Handler) ListInGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	h.list(w, r, &groupID, nil)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, groupID, paidBy *int64) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	expenses, total, err := h.service.ListExpenses(r.Context(), groupID, paidBy, page, perPage)
	if err != nil {
		writeError(w, r, err, "Failed to list expenses")
		return
	}

	expenseResponses := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		expenseResponses[i] = e.ToResponse()
	}

	response.JSONWithMeta(w, http.StatusOK, expenseResponses, response.NewMeta(page, perPage, total))
}

// Update handles PATCH /expenses/{id}
// @Summary      Update an expense
// @Description  Change description, amount or payer; the result is validated like a new expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path int true "Expense ID"
// @Param        request body UpdateExpenseRequest true "Fields to change"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	var req UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	actorID, _ := middleware.GetUserID(r.Context())

	e, err := h.service.UpdateExpense(r.Context(), id, actorID, &req)
	if err != nil {
		writeError(w, r, err, "Failed to update expense")
		return
	}

	response.JSON(w, http.StatusOK, e.ToResponse())
}

// Delete handles DELETE /expenses/{id}
// @Summary      Delete an expense
// @Tags         expenses
// @Produce      json
// @Param        id path int true "Expense ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	actorID, _ := middleware.GetUserID(r.Context())

	if err := h.service.DeleteExpense(r.Context(), id, actorID); err != nil {
		writeError(w, r, err, "Failed to delete expense")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
}

func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationFailed(w, "Expense is invalid", verr.ToFieldDetails())
	case errors.Is(err, ErrExpenseNotFound), errors.Is(err, ErrGroupNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotGroupMember):
		response.Forbidden(w, err.Error())
	default:
		slog.ErrorContext(r.Context(), fallback, "error", err)
		response.InternalError(w, fallback)
	}
}

func optionalID(r *http.Request, key string) (*int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
