package handler

import (
	"net/http"
	"strconv"

	"paycompliance/internal/apperror"
	"paycompliance/internal/middleware"
	"paycompliance/internal/service"
	"paycompliance/pkg/response"

	"github.com/gin-gonic/gin"
)

type TaxTableHandler struct {
	taxTableService service.TaxTableService
	auth            *middleware.Authenticator
}

func NewTaxTableHandler(taxTableService service.TaxTableService, auth *middleware.Authenticator) *TaxTableHandler {
	return &TaxTableHandler{taxTableService: taxTableService, auth: auth}
}

func (h *TaxTableHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/tax-tables")
	group.Use(h.auth.RequireRole(middleware.RoleAdmin, middleware.RoleManager, middleware.RoleEmployee))
	{
		group.GET("", h.List)
		group.GET("/:country/:year", h.Get)
		group.POST("/reload", h.auth.RequireRole(middleware.RoleAdmin), h.Reload)
	}
}

// List returns the loaded jurisdiction tables
// @Summary      List tax tables
// @Tags         tax-tables
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.TaxTablesResponse}
// @Router       /api/tax-tables [get]
func (h *TaxTableHandler) List(c *gin.Context) {
	res, err := h.taxTableService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Get returns one jurisdiction table
// @Summary      Get tax table
// @Tags         tax-tables
// @Security     BearerAuth
// @Produce      json
// @Param        country  path      string  true  "ISO country code"
// @Param        year     path      int     true  "Tax year"
// @Success      200      {object}  response.Response{data=taxtable.Table}
// @Failure      422      {object}  response.Response
// @Router       /api/tax-tables/{country}/{year} [get]
func (h *TaxTableHandler) Get(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		respondError(c, apperror.Validation("year must be a number"))
		return
	}

	table, err := h.taxTableService.Get(c.Request.Context(), c.Param("country"), year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, table))
}

// Reload re-reads the table source and swaps it in atomically
// @Summary      Reload tax tables
// @Description  A broken source leaves the previous tables in place
// @Tags         tax-tables
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.TaxTablesResponse}
// @Failure      422  {object}  response.Response
// @Router       /api/tax-tables/reload [post]
func (h *TaxTableHandler) Reload(c *gin.Context) {
	res, err := h.taxTableService.Reload(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
