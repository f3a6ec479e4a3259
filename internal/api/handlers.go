package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/habitgrid/internal/errors"
	"github.com/julianstephens/habitgrid/internal/habits"
	"github.com/julianstephens/habitgrid/internal/models"
)

var validate = validator.New()

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	svc   *habits.Service
	store Pinger
}

func NewHandler(svc *habits.Service, store Pinger) *Handler {
	return &Handler{svc: svc, store: store}
}

type idParam struct {
	ID string `uri:"id" validate:"required,max=64,printascii"`
}

type weekQuery struct {
	Date string `form:"date" validate:"omitempty,datetime=2006-01-02"`
}

type entriesQuery struct {
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" validate:"omitempty,datetime=2006-01-02"`
}

// habitPatch holds the fields of a partial habit update. Omitted fields keep their value.
type habitPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Color       *string  `json:"color"`
	Frequency   *string  `json:"frequency"`
	DaysOfWeek  []string `json:"days_of_week"`
	Variant     *string  `json:"variant"`
}

func (p habitPatch) apply(input *models.HabitInput) {
	if p.Name != nil {
		input.Name = *p.Name
	}
	if p.Description != nil {
		input.Description = *p.Description
	}
	if p.Color != nil {
		input.Color = *p.Color
	}
	if p.Frequency != nil {
		input.Frequency = *p.Frequency
	}
	if p.DaysOfWeek != nil {
		input.DaysOfWeek = p.DaysOfWeek
	}
	if p.Variant != nil {
		input.Variant = *p.Variant
	}
}

func badRequest(c *gin.Context, err error) {
	Fail(c, http.StatusBadRequest, "bad_request", err.Error())
}

func bindID(c *gin.Context) (string, bool) {
	var p idParam
	if err := c.ShouldBindUri(&p); err != nil {
		badRequest(c, err)
		return "", false
	}
	if err := validate.Struct(p); err != nil {
		badRequest(c, err)
		return "", false
	}
	return p.ID, true
}

// ownedHabit loads the habit and hides habits of other users behind not found
func (h *Handler) ownedHabit(c *gin.Context, id string) (models.Habit, bool) {
	habit, err := h.svc.GetHabit(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return models.Habit{}, false
	}
	if habit.OwnerID != currentUser(c) {
		HandleError(c, errors.Newf(errors.KindHabitNotFound, "habit %s not found", id))
		return models.Habit{}, false
	}
	return habit, true
}

// Health pings the store
func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		requestLogger(c).Warn("health check failed", "error", err)
		Fail(c, http.StatusServiceUnavailable, string(errors.KindStorage), "store unreachable")
		return
	}
	Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
}

func (h *Handler) CreateHabit(c *gin.Context) {
	var input models.HabitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	habit, err := h.svc.CreateHabit(c.Request.Context(), currentUser(c), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, http.StatusCreated, habit, nil)
}

func (h *Handler) ListHabits(c *gin.Context) {
	list, err := h.svc.ListHabits(c.Request.Context(), currentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	if list == nil {
		list = []models.Habit{}
	}
	Success(c, http.StatusOK, list, map[string]any{"count": len(list)})
}

func (h *Handler) GetHabit(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	habit, ok := h.ownedHabit(c, id)
	if !ok {
		return
	}
	Success(c, http.StatusOK, habit, nil)
}

func (h *Handler) UpdateHabit(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var patch habitPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	habit, ok := h.ownedHabit(c, id)
	if !ok {
		return
	}

	input := habits.InputFromHabit(habit)
	patch.apply(&input)

	updated, err := h.svc.UpdateHabit(c.Request.Context(), id, input)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, http.StatusOK, updated, nil)
}

func (h *Handler) DeleteHabit(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if _, ok := h.ownedHabit(c, id); !ok {
		return
	}
	if err := h.svc.DeleteHabit(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) HabitStats(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if _, ok := h.ownedHabit(c, id); !ok {
		return
	}
	stats, err := h.svc.GetHabitStats(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, http.StatusOK, stats, map[string]any{"streak_policy": h.svc.StreakPolicy()})
}

func (h *Handler) HabitWeek(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var q weekQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	if err := validate.Struct(q); err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := h.ownedHabit(c, id); !ok {
		return
	}
	view, err := h.svc.WeekView(c.Request.Context(), id, q.Date)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, http.StatusOK, view, nil)
}

func (h *Handler) HabitEntries(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var q entriesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	if err := validate.Struct(q); err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := h.ownedHabit(c, id); !ok {
		return
	}
	entries, err := h.svc.Entries(c.Request.Context(), id, q.From, q.To)
	if err != nil {
		HandleError(c, err)
		return
	}
	if entries == nil {
		entries = []models.HabitEntry{}
	}
	Success(c, http.StatusOK, entries, map[string]any{"count": len(entries)})
}

func (h *Handler) CreateEntry(c *gin.Context) {
	var input models.EntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	if input.HabitID != "" {
		if _, ok := h.ownedHabit(c, input.HabitID); !ok {
			return
		}
	}
	entry, err := h.svc.RecordCompletion(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, http.StatusCreated, entry, nil)
}

func (h *Handler) UpdateEntry(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var patch models.EntryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.svc.GetEntry(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	habit, err := h.svc.GetHabit(c.Request.Context(), entry.HabitID)
	if err != nil && errors.KindOf(err) != errors.KindHabitNotFound {
		HandleError(c, err)
		return
	}
	if err != nil || habit.OwnerID != currentUser(c) {
		HandleError(c, errors.Newf(errors.KindEntryNotFound, "entry %s not found", id))
		return
	}

	updated, err := h.svc.UpdateCompletion(c.Request.Context(), id, patch)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, http.StatusOK, updated, nil)
}
