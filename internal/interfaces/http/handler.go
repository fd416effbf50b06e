package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	appmarketdata "stocklens/internal/application/service/marketdata"
	marketdata "stocklens/internal/domain/entity/marketdata"
)

const apiBasePath = "/api"

// MarketDataService is what the HTTP layer needs from the application
// service.
type MarketDataService interface {
	HistoryWithIndicators(ctx context.Context, symbol, period, interval string, wants []string) (marketdata.Series, map[string]any, error)
	Quote(ctx context.Context, symbol string) (marketdata.Quote, error)
}

// Handler is the gin-backed HTTP surface of the service.
type Handler struct {
	router  *gin.Engine
	service MarketDataService
	logger  *logrus.Logger
}

// NewHandler builds the router with CORS, request logging and all routes.
func NewHandler(service MarketDataService, logger *logrus.Logger, allowedOrigins []string, registry *prometheus.Registry) *Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	h := &Handler{
		router:  router,
		service: service,
		logger:  logger,
	}

	router.Use(h.requestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))

	h.registerRoutes(registry)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes(registry *prometheus.Registry) {
	h.router.GET("/health", h.health)
	if registry != nil {
		h.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	api := h.router.Group(apiBasePath)
	{
		api.GET("/quote/:ticker", h.getQuote)
		api.GET("/history/:ticker", h.getHistory)
	}
}

// requestLogger tags every request with an id and logs its outcome.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		}).Info("request handled")
	}
}

type historyResponse struct {
	Ticker     string            `json:"ticker"`
	Period     string            `json:"period"`
	Interval   string            `json:"interval"`
	Candles    marketdata.Series `json:"candles"`
	Indicators map[string]any    `json:"indicators"`
}

// health reports liveness.
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// getQuote returns the current snapshot for a ticker.
func (h *Handler) getQuote(c *gin.Context) {
	quote, err := h.service.Quote(c.Request.Context(), c.Param("ticker"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// getHistory returns candles for a ticker plus any requested indicators.
// period defaults to 1y, interval to 1d; the indicators query parameter is
// a comma-separated subset of sma,ema,rsi,macd,boll and unknown tokens are
// silently ignored.
func (h *Handler) getHistory(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	period := c.DefaultQuery("period", marketdata.DefaultPeriod)
	interval := c.DefaultQuery("interval", marketdata.DefaultInterval)

	series, indicators, err := h.service.HistoryWithIndicators(
		c.Request.Context(), ticker, period, interval, parseIndicators(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, historyResponse{
		Ticker:     ticker,
		Period:     period,
		Interval:   interval,
		Candles:    series,
		Indicators: indicators,
	})
}

// parseIndicators distinguishes "not requested" (nil) from "requested but
// empty" (non-nil empty slice): the latter must produce an empty indicator
// object rather than a null.
func parseIndicators(c *gin.Context) []string {
	raw, ok := c.GetQuery("indicators")
	if !ok {
		return nil
	}
	wants := []string{}
	for _, token := range strings.Split(raw, ",") {
		token = strings.ToLower(strings.TrimSpace(token))
		if token != "" {
			wants = append(wants, token)
		}
	}
	return wants
}

// writeServiceError maps service errors onto the API's status contract:
// validation problems are 400, rate limiting 429, absence 404 and any
// other upstream trouble 503.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appmarketdata.ErrEmptySymbol),
		errors.Is(err, appmarketdata.ErrInvalidPeriod),
		errors.Is(err, appmarketdata.ErrInvalidInterval):
		writeError(c, http.StatusBadRequest, err)
		return
	}

	if kind, ok := marketdata.KindOf(err); ok {
		switch kind {
		case marketdata.KindRateLimited:
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "upstream rate limited, try again shortly"})
		case marketdata.KindNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "no historical data found"})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to download history"})
		}
		return
	}
	writeError(c, http.StatusInternalServerError, err)
}

func writeError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}
