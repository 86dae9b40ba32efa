package handlers

import (
	"net/http"
	"time"

	"launchpad/internal/services"

	"github.com/gin-gonic/gin"
)

type WinnersHandler struct {
	winnersService *services.WinnersService
}

func NewWinnersHandler() *WinnersHandler {
	return &WinnersHandler{
		winnersService: services.NewWinnersService(),
	}
}

func parseDateParam(c *gin.Context) (time.Time, bool) {
	value := c.Query("date")
	if value == "" {
		JSONError(c, http.StatusBadRequest, "date is required (YYYY-MM-DD)")
		return time.Time{}, false
	}
	date, err := time.Parse(services.DateFormat, value)
	if err != nil {
		JSONError(c, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

// List 某天的获奖项目，按名次升序
func (h *WinnersHandler) List(c *gin.Context) {
	date, ok := parseDateParam(c)
	if !ok {
		return
	}

	winners, err := h.winnersService.GetWinnersByDate(date)
	if err != nil {
		JSONError(c, http.StatusBadGateway, "temporary storage problem, please retry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"winners": winners})
}

// Check 某天是否已有获奖项目
func (h *WinnersHandler) Check(c *gin.Context) {
	date, ok := parseDateParam(c)
	if !ok {
		return
	}

	hasWinners, err := h.winnersService.DateHasWinners(date)
	if err != nil {
		JSONError(c, http.StatusBadGateway, "temporary storage problem, please retry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_winners": hasWinners})
}
