package handler

import (
	"context"
	"net/http"

	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http/dto"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// TransferPreviewService previews transfers and confirms them by token.
type TransferPreviewService interface {
	PreviewTransfer(ctx context.Context, input usecase.RecordTransferInput) (*usecase.TransferPreview, error)
	ConfirmTransfer(ctx context.Context, ownerID, token string) (*usecase.TransferResult, error)
}

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	ledgerUC  LedgerService
	previewUC TransferPreviewService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(ledgerUC LedgerService, previewUC TransferPreviewService) *TransferHandler {
	return &TransferHandler{ledgerUC: ledgerUC, previewUC: previewUC}
}

// Create records a transfer between two of the owner's accounts.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.TransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.ledgerUC.RecordTransfer(r.Context(), req.ToUseCaseInput(owner))
	if err != nil {
		writeDomainError(w, r, "failed to record transfer", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(result))
}

// Preview projects a transfer without recording it. An unaffordable
// transfer still previews, with has_sufficient_funds false.
func (h *TransferHandler) Preview(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.TransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	preview, err := h.previewUC.PreviewTransfer(r.Context(), req.ToUseCaseInput(owner))
	if err != nil {
		writeDomainError(w, r, "failed to preview transfer", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransferPreviewFromDomain(preview))
}

// Confirm records a previously previewed transfer.
func (h *TransferHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.ConfirmTransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.previewUC.ConfirmTransfer(r.Context(), owner, req.Token)
	if err != nil {
		writeDomainError(w, r, "failed to confirm transfer", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(result))
}
