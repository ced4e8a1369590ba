package handler

import (
	"net/http"

	"procurement/internal/currency"
	"procurement/internal/middleware"
	"procurement/internal/model"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CurrencyHandler struct {
	secret []byte
}

func NewCurrencyHandler(secret []byte) *CurrencyHandler {
	return &CurrencyHandler{secret: secret}
}

func (h *CurrencyHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/currency/convert", middleware.RequireRole(h.secret, model.RoleRequester, model.RoleManager), h.Convert)
}

type ConversionResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	From      model.Currency  `json:"from"`
	To        model.Currency  `json:"to"`
	Rate      decimal.Decimal `json:"rate"`
	Result    decimal.Decimal `json:"result"`
	Formatted string          `json:"formatted"`
}

// Convert converts an amount between BRL and USD at the fixed reference rates
// @Summary      Convert currency
// @Tags         currency
// @Security     BearerAuth
// @Produce      json
// @Param        amount  query     string  true  "Decimal amount"
// @Param        from    query     string  true  "BRL or USD"
// @Param        to      query     string  true  "BRL or USD"
// @Success      200     {object}  response.Response{data=handler.ConversionResponse}
// @Failure      400     {object}  response.Response
// @Router       /api/currency/convert [get]
func (h *CurrencyHandler) Convert(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid amount"))
		return
	}

	from, to := model.Currency(c.Query("from")), model.Currency(c.Query("to"))
	if !from.Valid() || !to.Valid() {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Currency must be BRL or USD"))
		return
	}

	result := currency.Convert(amount, from, to)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, ConversionResponse{
		Amount:    amount,
		From:      from,
		To:        to,
		Rate:      currency.Rate(from, to),
		Result:    result,
		Formatted: currency.Format(decimal.NewNullDecimal(result), to),
	}))
}
