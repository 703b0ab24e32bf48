package handler

import (
	"context"
	"net/http"
	"time"

	"kitchenledger/internal/dto"
	"kitchenledger/internal/worker"

	"github.com/gin-gonic/gin"
)

// DeadLetterStore is the dead letter list of one job queue.
type DeadLetterStore interface {
	Queue() string
	Len(ctx context.Context) (int64, error)
	Peek(ctx context.Context, n int64) ([]worker.DLQEntry, error)
	Requeue(ctx context.Context, n int) (int, error)
}

type JobsHandler struct{ dead DeadLetterStore }

func NewJobsHandler(dead DeadLetterStore) *JobsHandler { return &JobsHandler{dead: dead} }

// DeadLetters godoc
// @Summary      Failed brief e-mails
// @Description  Newest first. Jobs land here after the e-mail worker gave up.
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Max entries (default 20)"
// @Success      200 {object} dto.DeadLetterListResponse
// @Router       /v1/jobs/dead-letters [get]
func (h *JobsHandler) DeadLetters(c *gin.Context) {
	var filter dto.DeadLetterFilter
	if !bindQuery(c, &filter) {
		return
	}
	ctx := c.Request.Context()
	total, err := h.dead.Len(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	entries, err := h.dead.Peek(ctx, int64(filter.Limit))
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := dto.DeadLetterListResponse{Queue: h.dead.Queue(), Total: total, Data: make([]dto.DeadLetterResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Data = append(resp.Data, dto.DeadLetterResponse{
			JobType:  e.JobType,
			Reason:   e.Reason,
			Attempts: e.Attempts,
			FailedAt: e.FailedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// Requeue godoc
// @Summary      Retry failed brief e-mails
// @Description  Moves the oldest dead letters back onto the e-mail queue.
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Max jobs to move (default 20)"
// @Success      200 {object} dto.RequeueResponse
// @Router       /v1/jobs/dead-letters/requeue [post]
func (h *JobsHandler) Requeue(c *gin.Context) {
	var filter dto.DeadLetterFilter
	if !bindQuery(c, &filter) {
		return
	}
	moved, err := h.dead.Requeue(c.Request.Context(), filter.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.RequeueResponse{Queue: h.dead.Queue(), Moved: moved})
}
