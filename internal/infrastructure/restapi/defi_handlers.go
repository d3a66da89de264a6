package restapi

import (
	"net/http"
	"strconv"

	"whale_analyzer/internal/app/port"
	"whale_analyzer/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// DefiHandler serves DeFi position analyses and summaries of posted wallet data.
type DefiHandler struct {
	defi    port.DefiAnalysisService
	summary port.SummaryService
}

func NewDefiHandler(defi port.DefiAnalysisService, summary port.SummaryService) *DefiHandler {
	return &DefiHandler{defi: defi, summary: summary}
}

// AnalyzeDefiHandler handles GET /defi/:address?chainId=1.
func (h *DefiHandler) AnalyzeDefiHandler(c *gin.Context) {
	var chainID uint64
	if raw := c.Query("chainId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, APIErrorResponse{
				Error:     "chainId must be a positive integer",
				RequestID: c.GetString(requestIDKey),
			})
			return
		}
		chainID = id
	}

	result, err := h.defi.AnalyzeDefi(c.Request.Context(), c.Param("address"), chainID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SummarizeHandler handles POST /ai-analysis with a wallet snapshot body.
func (h *DefiHandler) SummarizeHandler(c *gin.Context) {
	var posted entity.PortfolioSnapshot
	if err := c.ShouldBindJSON(&posted); err != nil {
		c.JSON(http.StatusBadRequest, APIErrorResponse{
			Error:     "Wallet data is required",
			RequestID: c.GetString(requestIDKey),
		})
		return
	}

	analysis, err := h.summary.Summarize(c.Request.Context(), &posted)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": analysis, "requestId": c.GetString(requestIDKey)})
}

func (h *DefiHandler) fail(c *gin.Context, err error) {
	status, body := errorResponse(err)
	body.RequestID = c.GetString(requestIDKey)
	_ = c.Error(err)
	c.JSON(status, body)
}
