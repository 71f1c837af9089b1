package handler

import (
	"net/http"
	"strings"
	"time"

	"paycompliance/internal/apperror"
	"paycompliance/internal/middleware"
	"paycompliance/internal/payroll"
	"paycompliance/internal/service"
	"paycompliance/pkg/pagination"
	"paycompliance/pkg/response"

	"github.com/gin-gonic/gin"
)

type OvertimeHandler struct {
	overtimeService service.OvertimeService
	auth            *middleware.Authenticator
	idempotency     gin.HandlerFunc
	userLimit       gin.HandlerFunc
	now             func() time.Time
}

// NewOvertimeHandler wires the overtime endpoints. idempotency guards request
// creation and may be nil.
func NewOvertimeHandler(overtimeService service.OvertimeService, auth *middleware.Authenticator, idempotency gin.HandlerFunc) *OvertimeHandler {
	return &OvertimeHandler{
		overtimeService: overtimeService,
		auth:            auth,
		idempotency:     idempotency,
		now:             time.Now,
	}
}

// WithUserRateLimit installs limit after authentication on the request
// endpoints so each caller gets its own budget.
func (h *OvertimeHandler) WithUserRateLimit(limit gin.HandlerFunc) *OvertimeHandler {
	h.userLimit = limit
	return h
}

func (h *OvertimeHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/overtime-requests")
	group.Use(h.auth.RequireRole(middleware.RoleAdmin, middleware.RoleManager, middleware.RoleEmployee))
	if h.userLimit != nil {
		group.Use(h.userLimit)
	}
	{
		create := []gin.HandlerFunc{h.CreateRequest}
		if h.idempotency != nil {
			create = append([]gin.HandlerFunc{h.idempotency}, create...)
		}
		group.POST("", create...)
		group.GET("", h.ListRequests)
		group.GET("/:id", h.GetRequest)
		group.PUT("/:id/decision", h.auth.RequireRole(middleware.RoleAdmin, middleware.RoleManager), h.DecideRequest)
		group.PUT("/:id/withdraw", h.WithdrawRequest)
	}

	router.GET("/api/overtime-pay/:employeeId",
		h.auth.RequireRole(middleware.RoleAdmin, middleware.RoleManager),
		h.OvertimePay,
	)
}

// CreateRequest submits a new overtime request
// @Summary      Create overtime request
// @Description  Validates the request against jurisdiction caps and consent, then auto-approves or leaves it pending
// @Tags         overtime
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                                   false  "Idempotency key"
// @Param        request          body      service.CreateOvertimeRequestDTO         true   "Overtime request"
// @Success      201              {object}  response.Response{data=service.OvertimeRequestResponse}
// @Failure      400              {object}  response.Response
// @Failure      422              {object}  response.Response
// @Router       /api/overtime-requests [post]
func (h *OvertimeHandler) CreateRequest(c *gin.Context) {
	var req service.CreateOvertimeRequestDTO
	if !bindJSON(c, &req) {
		return
	}

	userID := middleware.CurrentUserID(c)
	if middleware.CurrentUserRole(c) == middleware.RoleEmployee && !strings.EqualFold(req.EmployeeID, userID) {
		respondError(c, apperror.ErrForbidden.WithMessage("employees can only request overtime for themselves"))
		return
	}

	res, err := h.overtimeService.CreateRequest(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// ListRequests lists overtime requests
// @Summary      List overtime requests
// @Description  Employees only see their own requests
// @Tags         overtime
// @Security     BearerAuth
// @Produce      json
// @Param        employee_id  query     string  false  "Filter by employee"
// @Param        status       query     string  false  "PENDING, APPROVED, AUTO_APPROVED, REJECTED or WITHDRAWN"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Success      200          {object}  response.Response{data=response.Paginated}
// @Router       /api/overtime-requests [get]
func (h *OvertimeHandler) ListRequests(c *gin.Context) {
	p := pagination.Parse(c)
	filter := service.OvertimeListFilter{
		EmployeeID: c.Query("employee_id"),
		Status:     c.Query("status"),
		Page:       p.Page,
		Limit:      p.Limit,
	}
	if middleware.CurrentUserRole(c) == middleware.RoleEmployee {
		filter.EmployeeID = middleware.CurrentUserID(c)
	}

	items, total, err := h.overtimeService.ListRequests(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.Paginated{
		Items: items,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	}))
}

// GetRequest returns one overtime request
// @Summary      Get overtime request
// @Tags         overtime
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.OvertimeRequestResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/overtime-requests/{id} [get]
func (h *OvertimeHandler) GetRequest(c *gin.Context) {
	res, err := h.overtimeService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if middleware.CurrentUserRole(c) == middleware.RoleEmployee && !strings.EqualFold(res.EmployeeID, middleware.CurrentUserID(c)) {
		respondError(c, apperror.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// DecideRequest approves or rejects a pending request
// @Summary      Decide overtime request
// @Description  Rejections require comments
// @Tags         overtime
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Request ID"
// @Param        request  body      service.DecisionDTO  true  "Decision"
// @Success      200      {object}  response.Response{data=service.OvertimeRequestResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/overtime-requests/{id}/decision [put]
func (h *OvertimeHandler) DecideRequest(c *gin.Context) {
	var req service.DecisionDTO
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.overtimeService.DecideRequest(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// WithdrawRequest withdraws a pending request
// @Summary      Withdraw overtime request
// @Description  Only the original requester can withdraw, and only while pending
// @Tags         overtime
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.OvertimeRequestResponse}
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/overtime-requests/{id}/withdraw [put]
func (h *OvertimeHandler) WithdrawRequest(c *gin.Context) {
	res, err := h.overtimeService.WithdrawRequest(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// OvertimePay calculates pay owed for approved overtime in a period
// @Summary      Overtime pay for a period
// @Description  Defaults to the current calendar month and the employee's pay frequency
// @Tags         overtime
// @Security     BearerAuth
// @Produce      json
// @Param        employeeId  path      string  true   "Employee ID"
// @Param        start       query     string  false  "Period start (YYYY-MM-DD)"
// @Param        end         query     string  false  "Period end (YYYY-MM-DD)"
// @Param        frequency   query     string  false  "Pay frequency"
// @Success      200         {object}  response.Response{data=service.OvertimePaySummary}
// @Router       /api/overtime-pay/{employeeId} [get]
func (h *OvertimeHandler) OvertimePay(c *gin.Context) {
	period, err := h.periodFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.overtimeService.CalculateOvertimePay(c.Request.Context(), c.Param("employeeId"), period)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

func (h *OvertimeHandler) periodFromQuery(c *gin.Context) (payroll.PayPeriod, error) {
	now := h.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	period := payroll.PayPeriod{
		Start: monthStart,
		End:   monthStart.AddDate(0, 1, -1),
	}

	if raw := c.Query("start"); raw != "" {
		start, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return payroll.PayPeriod{}, apperror.Validation("start must be a date in YYYY-MM-DD format")
		}
		period.Start = start
	}
	if raw := c.Query("end"); raw != "" {
		end, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return payroll.PayPeriod{}, apperror.Validation("end must be a date in YYYY-MM-DD format")
		}
		period.End = end
	}
	if raw := c.Query("frequency"); raw != "" {
		freq, err := payroll.ParseFrequency(raw)
		if err != nil {
			return payroll.PayPeriod{}, err
		}
		period.Frequency = freq
	}
	return period, nil
}
