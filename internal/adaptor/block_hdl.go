package adaptor

import (
	"net/http"
	"strconv"

	"resort-booking/internal/dto/request"
	"resort-booking/internal/usecase"
	"resort-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BlockHandler struct {
	service usecase.BlockService
	log     *zap.Logger
}

func NewBlockHandler(service usecase.BlockService, log *zap.Logger) *BlockHandler {
	return &BlockHandler{
		service: service,
		log:     log.With(zap.String("handler", "block")),
	}
}

// CreateBlock handles POST /api/admin/blocks (admin only)
func (h *BlockHandler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	var req request.CreateBlockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBodyError(w, err)
		return
	}

	block, err := h.service.CreateBlock(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create block")
		return
	}

	utils.ResponseCreated(w, "success", block)
}

// ListBlocks handles GET /api/admin/blocks (admin only)
func (h *BlockHandler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	activeOnly, _ := strconv.ParseBool(query.Get("active_only"))

	blocks, err := h.service.ListBlocks(r.Context(), &request.ListBlocksRequest{
		ParentID:   query.Get("parent_id"),
		StartDate:  query.Get("start_date"),
		EndDate:    query.Get("end_date"),
		ActiveOnly: activeOnly,
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), 20),
		},
	})
	if err != nil {
		handleServiceError(w, h.log, err, "list blocks")
		return
	}

	utils.ResponseSuccess(w, "success", blocks)
}

// RevokeBlock handles DELETE /api/admin/blocks/{id} (admin only)
func (h *BlockHandler) RevokeBlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.ResponseBadRequest(w, "Block ID is required", nil)
		return
	}

	block, err := h.service.RevokeBlock(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, "revoke block")
		return
	}

	utils.ResponseSuccess(w, "success", block)
}
