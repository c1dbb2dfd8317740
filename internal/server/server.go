// Package server exposes a task store over the HTTP contract the client
// speaks: GET /todos, POST /todo, PUT /todo/:id and DELETE /todo/:id.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tally/internal/storage"
	"tally/internal/task"
)

type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]task.Task, error)
	Get(ctx context.Context, id task.ID) (task.Task, error)
	Create(ctx context.Context, in task.NewTask) (task.Task, error)
	Replace(ctx context.Context, t task.Task) (task.Task, error)
	Delete(ctx context.Context, id task.ID) error
}

// badRequest marks input errors answered with 400.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }

func (e badRequest) Unwrap() error { return e.err }

type handler struct {
	store Store
	log   *zap.Logger
}

// New builds the gin engine serving store.
func New(store Store, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	h := &handler{store: store, log: log}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:   []string{"Content-Length", requestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/ping", h.ping)
	r.GET("/todos", h.list)
	r.POST("/todo", h.create)
	r.GET("/todo/:id", h.get)
	r.PUT("/todo/:id", h.replace)
	r.DELETE("/todo/:id", h.delete)
	return r
}

// createRequest accepts both createdAt and created_at.
type createRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Priority    int        `json:"priority"`
	CreatedAt   *time.Time `json:"createdAt"`
	CreatedAlt  *time.Time `json:"created_at"`
	IsCompleted bool       `json:"is_completed"`
}

func (r createRequest) toNewTask() (task.NewTask, error) {
	in := task.NewTask{
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		Priority:    task.Priority(r.Priority),
		IsCompleted: r.IsCompleted,
	}
	if in.Title == "" {
		return in, errors.New("title is required")
	}
	if r.Deadline == nil || r.Deadline.IsZero() {
		return in, errors.New("deadline is required")
	}
	if !in.Priority.Valid() {
		return in, errors.New("priority must be 1, 2 or 3")
	}
	in.Deadline = *r.Deadline
	switch {
	case r.CreatedAt != nil:
		in.CreatedAt = *r.CreatedAt
	case r.CreatedAlt != nil:
		in.CreatedAt = *r.CreatedAlt
	}
	return in, nil
}

func (h *handler) ping(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.log.Warn("store unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func (h *handler) list(c *gin.Context) {
	tasks, err := h.store.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *handler) get(c *gin.Context) {
	t, err := h.store.Get(c.Request.Context(), task.ID(c.Param("id")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, badRequest{err})
		return
	}
	in, err := req.toNewTask()
	if err != nil {
		h.fail(c, badRequest{err})
		return
	}
	created, err := h.store.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *handler) replace(c *gin.Context) {
	var t task.Task
	if err := c.ShouldBindJSON(&t); err != nil {
		h.fail(c, badRequest{err})
		return
	}
	t.ID = task.ID(c.Param("id"))
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		h.fail(c, badRequest{errors.New("title is required")})
		return
	}
	if t.Deadline.IsZero() {
		h.fail(c, badRequest{errors.New("deadline is required")})
		return
	}
	if !t.Priority.Valid() {
		h.fail(c, badRequest{errors.New("priority must be 1, 2 or 3")})
		return
	}
	updated, err := h.store.Replace(c.Request.Context(), t)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *handler) delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), task.ID(c.Param("id"))); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) fail(c *gin.Context, err error) {
	var bad badRequest
	switch {
	case errors.As(err, &bad):
		c.JSON(http.StatusBadRequest, gin.H{"error": bad.Error()})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error("store failure",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
