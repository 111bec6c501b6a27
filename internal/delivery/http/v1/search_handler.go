package v1

import (
	"encoding/json"
	"net/http"

	"go-jobsearch-backend/internal/delivery/http/response"
	"go-jobsearch-backend/internal/domain"
	"go-jobsearch-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	searchUC domain.SearchUsecase
}

func NewSearchHandler(rg *gin.RouterGroup, searchUC domain.SearchUsecase) {
	handler := &SearchHandler{searchUC: searchUC}

	jobs := rg.Group("/jobs")
	{
		jobs.POST("/search", handler.Search)
	}
}

// SearchRequest is the full request surface: filters plus sort selection.
type SearchRequest struct {
	Filters domain.RawFilters `json:"filters"`
	Sort    domain.RawSort    `json:"sort"`
}

func (h *SearchHandler) Search(c *gin.Context) {
	// Closed schema: unknown fields are rejected rather than silently
	// ignored, so typos in filter names fail loudly.
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()

	var req SearchRequest
	if err := decoder.Decode(&req); err != nil {
		_ = c.Error(apperror.BadRequest("Malformed search request: " + err.Error()))
		return
	}

	identity := c.GetString(string(domain.KeyIdentity))

	page, err := h.searchUC.Search(c.Request.Context(), req.Filters, req.Sort, identity)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Search results", page)
}
