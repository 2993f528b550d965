package handlers

import (
	"net/http"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func registerValuationRoutes(rg *gin.RouterGroup) {
	rg.GET("/valuation/post-money", getPostMoneyValuation)
}

// getPostMoneyValuation godoc
// @Summary Post-money valuation calculator
// @Description postMoney = preMoney + amount
// @Tags valuation
// @Produce json
// @Param preMoney query string true "Pre-money valuation"
// @Param amount query string true "Investment amount"
// @Success 200 {object} dto.PostMoneyResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /valuation/post-money [get]
func getPostMoneyValuation(c *gin.Context) {
	var params dto.PostMoneyParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	preMoney, err := decimal.NewFromString(params.PreMoney)
	if err != nil {
		respondBindError(c, err)
		return
	}
	amount, err := decimal.NewFromString(params.Amount)
	if err != nil {
		respondBindError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PostMoneyResponse{
		PreMoneyValuation:  preMoney,
		InvestmentAmount:   amount,
		PostMoneyValuation: domain.PostMoneyValuation(preMoney, amount),
	})
}
