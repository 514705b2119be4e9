package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ac2302/3d-ecommerce-backend/internal/catalog"
	"github.com/ac2302/3d-ecommerce-backend/internal/fault"
	"github.com/ac2302/3d-ecommerce-backend/internal/httpx/middlewares"
	"github.com/ac2302/3d-ecommerce-backend/internal/identity"
	"github.com/ac2302/3d-ecommerce-backend/internal/payout"
	"github.com/ac2302/3d-ecommerce-backend/internal/printjob"
	"github.com/ac2302/3d-ecommerce-backend/internal/purchase"
)

// Handler handles every incoming HTTP request of the backend.
type Handler struct {
	items     *catalog.Service
	purchases *purchase.Service
	payouts   *payout.Service
	printJobs *printjob.Service
	ledger    identity.OwnershipLedger
}

func NewHandler(
	items *catalog.Service,
	purchases *purchase.Service,
	payouts *payout.Service,
	printJobs *printjob.Service,
	ledger identity.OwnershipLedger,
) *Handler {
	return &Handler{
		items:     items,
		purchases: purchases,
		payouts:   payouts,
		printJobs: printJobs,
		ledger:    ledger,
	}
}

// ListItems returns the whole catalog.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		writeFault(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GetItem returns a single sellable item by id.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.items.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFault(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// CreateItem lists a new sellable item for the authenticated creator.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	user := mustPrincipal(r)

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	item, err := h.items.Create(r.Context(), user.ID, catalog.CreateItemInput{
		Title:        req.Title,
		Price:        req.Price,
		Description:  req.Description,
		ObjectURL:    req.ObjectURL,
		Image:        req.Image,
		SellableType: req.SellableType,
	})
	if err != nil {
		writeFault(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// ListOwnedItems resolves the principal's owned item ids to full records.
func (h *Handler) ListOwnedItems(w http.ResponseWriter, r *http.Request) {
	user := mustPrincipal(r)

	ids, err := h.ledger.ListOwned(r.Context(), user.ID)
	if err != nil {
		writeFault(w, r, fault.Internal(err, "could not list owned items"))
		return
	}

	items, err := h.items.GetMany(r.Context(), ids)
	if err != nil {
		writeFault(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateOrder opens a pending gateway order for the item.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user := mustPrincipal(r)

	order, err := h.purchases.InitiateOrder(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		writeFault(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// VerifyPayment validates the gateway callback and finalizes the purchase.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	user := mustPrincipal(r)

	var req VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	receipt, err := h.purchases.VerifyAndFinalize(
		r.Context(), user, chi.URLParam(r, "id"),
		req.OrderID, req.PaymentID, req.Signature,
	)
	if err != nil {
		writeFault(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, VerifyPaymentResponse{
		Message:   "payment verified successfully",
		ReceiptID: receipt.ID,
	})
}

// DirectBuy finalizes a purchase without gateway verification. Free items
// only, unless the deployment allows otherwise.
func (h *Handler) DirectBuy(w http.ResponseWriter, r *http.Request) {
	user := mustPrincipal(r)

	receipt, err := h.purchases.DirectBuy(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		writeFault(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// GetDue reports the amount owed to the authenticated creator.
func (h *Handler) GetDue(w http.ResponseWriter, r *http.Request) {
	user := mustPrincipal(r)

	amount, err := h.payouts.Due(r.Context(), user.ID)
	if err != nil {
		writeFault(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DueResponse{DueAmount: amount})
}

// Withdraw settles the authenticated creator's unpaid receipts.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	user := mustPrincipal(r)

	amount, err := h.payouts.Withdraw(r.Context(), user.ID)
	if err != nil {
		writeFault(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, WithdrawResponse{PaidAmount: amount})
}

// ListPrintJobs returns every print job.
func (h *Handler) ListPrintJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.printJobs.List(r.Context())
	if err != nil {
		writeFault(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// CreatePrintJob stores a new print job for the authenticated buyer.
func (h *Handler) CreatePrintJob(w http.ResponseWriter, r *http.Request) {
	user := mustPrincipal(r)

	var req CreatePrintJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	job, err := h.printJobs.Create(r.Context(), user.ID, printjob.CreateInput{
		Title:     req.Title,
		Volume:    req.Volume,
		Quantity:  req.Quantity,
		ObjectURL: req.ObjectURL,
		Address:   req.Address,
	})
	if err != nil {
		writeFault(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

// mustPrincipal is only called behind the AuthOnly middleware, so a
// missing principal is a programming error, not a request error.
func mustPrincipal(r *http.Request) *identity.User {
	user, ok := middlewares.PrincipalFromContext(r.Context())
	if !ok {
		panic("httpx: principal missing on authenticated route")
	}
	return user
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

// writeFault maps the application error taxonomy onto HTTP statuses. Only
// the kind and the caller-safe message ever reach the client.
func writeFault(w http.ResponseWriter, r *http.Request, err error) {
	kind := fault.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case fault.KindNotFound:
		status = http.StatusNotFound
	case fault.KindConflict:
		status = http.StatusConflict
	case fault.KindValidation, fault.KindInvalidSignature:
		status = http.StatusBadRequest
	case fault.KindUnauthorized:
		status = http.StatusUnauthorized
	case fault.KindExternalService:
		status = http.StatusBadGateway
	}

	if status >= 500 {
		slog.ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path)
	}

	writeError(w, status, string(kind), fault.MessageOf(err))
}
