package handler

import (
	"net/http"
	"strconv"

	"catercost/internal/apierror"
	"catercost/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// DeadLetters godoc
// @Summary      List dead-lettered shopping-list jobs, newest first
// @Tags         admin
// @Produce      json
// @Param        limit  query  int  false  "Max entries (default 20)"
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  apierror.APIError
// @Security     BearerAuth
// @Router       /v1/admin/dead-letters [get]
func DeadLetters(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.JSON(http.StatusServiceUnavailable, apierror.New("job queue unavailable"))
			return
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, apierror.New("invalid limit"))
			return
		}
		if limit > worker.DLQMaxEntries {
			limit = worker.DLQMaxEntries
		}

		ctx := c.Request.Context()
		total, err := worker.DLQLength(ctx, rdb, worker.QueueShoppingList)
		if err != nil {
			_ = c.Error(err)
			return
		}
		entries, err := worker.PeekDLQ(ctx, rdb, worker.QueueShoppingList, int64(limit))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"queue":   worker.QueueShoppingList,
			"total":   total,
			"entries": entries,
		})
	}
}
