package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habitpulse/internal/consistency"
	"habitpulse/internal/model"
	"habitpulse/internal/service/dashboard"
	"habitpulse/pkg/auth"
	"habitpulse/pkg/rbac"
)

type DashboardService interface {
	Overview(ctx context.Context, userID int, filter consistency.Filter) (dashboard.Overview, error)
	HabitDetail(ctx context.Context, userID, habitID int) (dashboard.HabitDetail, error)
	HabitIntervals(ctx context.Context, userID, habitID int) (dashboard.IntervalReport, error)
	Due(ctx context.Context, userID int) (dashboard.DueReport, error)
	Compute(ctx context.Context, req dashboard.ComputeRequest) (dashboard.ComputeResult, error)
}

type DashboardHandler struct {
	svc    DashboardService
	logger *zap.Logger
}

func NewDashboardHandler(svc DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: logger}
}

// targetUser is the caller, or the user named by ?user_id= when the caller
// may read other users' dashboards.
func targetUser(c *gin.Context) (int, bool) {
	caller := auth.UserID(c)
	raw := c.Query("user_id")
	if raw == "" {
		return caller, true
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		badRequest(c, "user_id must be a positive integer")
		return 0, false
	}
	if id != caller {
		if err := rbac.CheckPermission(caller, auth.Role(c), rbac.PermissionReadAnyUser); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return 0, false
		}
	}
	return id, true
}

func habitIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "habit id must be a positive integer")
		return 0, false
	}
	return id, true
}

func parseDate(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		badRequest(c, key+" must be formatted as YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}

// GetOverview handles GET /v1/dashboard/overview
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}
	start, ok := parseDate(c, "start")
	if !ok {
		return
	}
	end, ok := parseDate(c, "end")
	if !ok {
		return
	}

	filter := consistency.Filter{
		Start:    start,
		End:      end,
		Category: c.DefaultQuery("category", consistency.AllCategories),
	}
	overview, err := h.svc.Overview(c.Request.Context(), userID, filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// GetDue handles GET /v1/dashboard/due
func (h *DashboardHandler) GetDue(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}

	due, err := h.svc.Due(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, due)
}

// GetHabitAnalytics handles GET /v1/habits/:id/analytics
func (h *DashboardHandler) GetHabitAnalytics(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}
	habitID, ok := habitIDParam(c)
	if !ok {
		return
	}

	detail, err := h.svc.HabitDetail(c.Request.Context(), userID, habitID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetHabitIntervals handles GET /v1/habits/:id/intervals
func (h *DashboardHandler) GetHabitIntervals(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}
	habitID, ok := habitIDParam(c)
	if !ok {
		return
	}

	report, err := h.svc.HabitIntervals(c.Request.Context(), userID, habitID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Compute handles POST /v1/analytics/compute
func (h *DashboardHandler) Compute(c *gin.Context) {
	var req dashboard.ComputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	// 提交他人的 habit 需要 read_any 权限
	if req.Habit.UserID != 0 && !rbac.HasPermission(auth.Role(c), rbac.PermissionReadAnyUser) {
		if err := rbac.ValidateUserIDInPayload(auth.UserID(c), req.Habit.UserID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
	}

	res, err := h.svc.Compute(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
