package restapi

import (
	"errors"
	"net/http"

	"whale_analyzer/internal/app/port"
	"whale_analyzer/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// APIErrorResponse is the body of every non-2xx response.
type APIErrorResponse struct {
	Error     string              `json:"error"`
	Timeout   bool                `json:"timeout,omitempty"`
	Failures  []entity.ChainError `json:"failures,omitempty"`
	RequestID string              `json:"requestId,omitempty"`
}

type analyzeRequest struct {
	Address string `json:"address"`
}

// WalletHandler serves wallet analyses and chain metadata.
type WalletHandler struct {
	analysis  port.WalletAnalysisService
	chainMeta port.ChainMetadataProvider
	logger    port.Logger
}

func NewWalletHandler(analysis port.WalletAnalysisService, chainMeta port.ChainMetadataProvider, logger port.Logger) *WalletHandler {
	return &WalletHandler{analysis: analysis, chainMeta: chainMeta, logger: logger}
}

// AnalyzeWalletHandler handles POST /wallet/analyze with {"address": "0x..."}.
func (h *WalletHandler) AnalyzeWalletHandler(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Address == "" {
		c.JSON(http.StatusBadRequest, APIErrorResponse{
			Error:     "Wallet address is required",
			RequestID: c.GetString(requestIDKey),
		})
		return
	}
	h.analyze(c, req.Address)
}

// GetWalletHandler handles GET /wallet/:address.
func (h *WalletHandler) GetWalletHandler(c *gin.Context) {
	h.analyze(c, c.Param("address"))
}

func (h *WalletHandler) analyze(c *gin.Context, address string) {
	snapshot, err := h.analysis.AnalyzeWallet(c.Request.Context(), address)
	if err != nil {
		status, body := errorResponse(err)
		body.RequestID = c.GetString(requestIDKey)
		_ = c.Error(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// ListChainsHandler handles GET /chains.
func (h *WalletHandler) ListChainsHandler(c *gin.Context) {
	chains := h.chainMeta.All(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"chains": chains, "count": len(chains)})
}

func errorResponse(err error) (int, APIErrorResponse) {
	var (
		validationErr  *entity.ValidationError
		acquisitionErr *entity.AcquisitionError
		timeoutErr     *entity.TimeoutError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, APIErrorResponse{Error: validationErr.Error()}
	case errors.As(err, &timeoutErr):
		return http.StatusRequestTimeout, APIErrorResponse{
			Error:   "Analysis is taking longer than expected. Please try again.",
			Timeout: true,
		}
	case errors.As(err, &acquisitionErr):
		return http.StatusBadGateway, APIErrorResponse{
			Error:    acquisitionErr.Error(),
			Failures: acquisitionErr.Failures,
		}
	default:
		return http.StatusInternalServerError, APIErrorResponse{Error: "Failed to analyze wallet"}
	}
}
