package handler

import (
	"net/http"
	"strconv"
	"time"

	"paycompliance/internal/apperror"
	"paycompliance/internal/middleware"
	"paycompliance/internal/service"
	"paycompliance/pkg/response"

	"github.com/gin-gonic/gin"
)

type PayrollHandler struct {
	payrollService service.PayrollService
	auth           *middleware.Authenticator
	now            func() time.Time
}

func NewPayrollHandler(payrollService service.PayrollService, auth *middleware.Authenticator) *PayrollHandler {
	return &PayrollHandler{payrollService: payrollService, auth: auth, now: time.Now}
}

func (h *PayrollHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/payroll")
	group.Use(h.auth.RequireRole(middleware.RoleAdmin, middleware.RoleManager))
	{
		group.POST("/calculate", h.Calculate)
		group.GET("/projection/:employeeId", h.Project)
	}
}

// Calculate runs gross-to-net payroll for one period
// @Summary      Calculate payroll
// @Description  Uses the stored profile for employee_id, or an inline profile. Amounts are decimal strings.
// @Tags         payroll
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      service.CalculatePayrollDTO  true  "Payroll input"
// @Success      200      {object}  response.Response{data=payroll.Calculation}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/payroll/calculate [post]
func (h *PayrollHandler) Calculate(c *gin.Context) {
	var req service.CalculatePayrollDTO
	if !bindJSON(c, &req) {
		return
	}

	calc, err := h.payrollService.Calculate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, calc))
}

// Project returns the annual projection for an employee
// @Summary      Annual payroll projection
// @Tags         payroll
// @Security     BearerAuth
// @Produce      json
// @Param        employeeId  path      string  true   "Employee ID"
// @Param        year        query     int     false  "Tax year (default current year)"
// @Success      200         {object}  response.Response{data=payroll.ProjectionSummary}
// @Router       /api/payroll/projection/{employeeId} [get]
func (h *PayrollHandler) Project(c *gin.Context) {
	year := h.now().Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperror.Validation("year must be a number"))
			return
		}
		year = parsed
	}

	summary, err := h.payrollService.Project(c.Request.Context(), c.Param("employeeId"), year)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
