package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"habitbot/internal/feedback"
	"habitbot/internal/habits"
)

// WebhookPath путь, на который Telegram присылает обновления
const WebhookPath = "/telegram/webhook"

// UpdateSink принимает обновления Telegram в общую очередь бота
type UpdateSink interface {
	Enqueue(update tgbotapi.Update) bool
}

// FeedbackTrigger запускает еженедельную обратную связь. ran=false: прогон уже идёт.
type FeedbackTrigger func(ctx context.Context, asOf time.Time) (report *feedback.Report, ran bool, err error)

// Options настройки HTTP сервера
type Options struct {
	AdminToken string // пусто: маршрута /admin нет
	Location   *time.Location
	Debug      bool
}

// Server HTTP сервер бота: проверка здоровья, webhook, ручной запуск обратной связи
type Server struct {
	router  *gin.Engine
	sink    UpdateSink
	trigger FeedbackTrigger
	opts    Options
	http    *http.Server
}

// NewServer создаёт сервер. sink nil: без webhook, trigger nil: без /admin/feedback.
func NewServer(sink UpdateSink, trigger FeedbackTrigger, opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{
		router:  router,
		sink:    sink,
		trigger: trigger,
		opts:    opts,
	}

	router.GET("/healthz", s.handleHealth)
	if sink != nil {
		router.POST(WebhookPath, s.handleWebhook)
	}
	if trigger != nil && opts.AdminToken != "" {
		admin := router.Group("/admin", s.requireAdmin)
		{
			admin.POST("/feedback", s.handleFeedback)
		}
	}

	return s
}

// Handler возвращает http.Handler (для тестов и встраивания)
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start слушает addr в фоне
func (s *Server) Start(addr string) {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", addr).Info("HTTP сервер запущен")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP сервер остановлен с ошибкой")
		}
	}()
}

// Shutdown останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleWebhook(c *gin.Context) {
	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update"})
		return
	}
	if !s.sink.Enqueue(update) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queue is full"})
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) requireAdmin(c *gin.Context) {
	token := c.GetHeader("X-Admin-Token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.opts.AdminToken)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

type userResultJSON struct {
	UserID int64   `json:"user_id"`
	Trend  string  `json:"trend"`
	Score  float64 `json:"score"`
	Sent   bool    `json:"sent"`
	Error  string  `json:"error,omitempty"`
}

// handleFeedback POST /admin/feedback?as_of=2026-10-25
func (s *Server) handleFeedback(c *gin.Context) {
	asOf := time.Now().In(s.opts.Location)
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := habits.ParseDate(raw, s.opts.Location)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "as_of must be YYYY-MM-DD"})
			return
		}
		asOf = parsed
	}

	report, ran, err := s.trigger(c.Request.Context(), asOf)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ran {
		c.JSON(http.StatusConflict, gin.H{"error": "feedback run already in progress"})
		return
	}

	results := make([]userResultJSON, 0, len(report.Results))
	for _, res := range report.Results {
		item := userResultJSON{
			UserID: res.UserID,
			Trend:  res.Trend.String(),
			Score:  res.Score,
			Sent:   res.Sent,
		}
		if res.Err != nil {
			item.Error = res.Err.Error()
		}
		results = append(results, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":  report.RunID,
		"week":    report.Anchor.Format(habits.DateLayout),
		"users":   len(report.Results),
		"failed":  report.Failed(),
		"results": results,
	})
}

// requestLogger пишет запросы в logrus
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).Round(time.Millisecond),
		}).Debug("HTTP запрос")
	}
}
