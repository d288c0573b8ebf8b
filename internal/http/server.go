package http

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cashbook/internal/core"
	"cashbook/internal/log"
	"cashbook/internal/services"
	appweb "cashbook/web"
)

// Ledger is the engine surface the API exposes.
type Ledger interface {
	Snapshot(ctx context.Context) *core.Document
	Ready(ctx context.Context) error
	UpdateConfig(ctx context.Context, u services.ConfigUpdate) (*core.Document, error)
	AddIncome(ctx context.Context, amount float64, source string) (*core.Document, error)
	EditIncome(ctx context.Context, id int64, amount float64, source string) (*core.Document, error)
	AddExpense(ctx context.Context, amount float64, category string) (*core.Document, error)
	EditExpense(ctx context.Context, id int64, amount float64, category string) (*core.Document, error)
	AddTask(ctx context.Context, title, description string) (*core.Document, error)
	UpdateTaskStatus(ctx context.Context, id int64, status core.TaskStatus) (*core.Document, error)
	EditTask(ctx context.Context, id int64, title, description string) (*core.Document, error)
	Export(ctx context.Context, w io.Writer) error
}

type Options struct {
	RateLimitPerMinute int
	// Gatherer backs /metrics; prometheus.DefaultGatherer when nil.
	Gatherer prometheus.Gatherer
	Logger   *log.Logger
}

type Server struct {
	http.Server
	ledger      Ledger
	logger      *log.Logger
	rateLimiter *rateLimiter
	started     time.Time
}

func NewServer(addr string, ledger Ledger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	perMinute := opts.RateLimitPerMinute
	if perMinute == 0 {
		perMinute = 60
	}

	s := &Server{
		ledger:      ledger,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(perMinute),
		started:     time.Now(),
	}

	mux := http.NewServeMux()
	s.handle(mux, "GET /api/data", s.handleData)
	s.handle(mux, "POST /api/updateConfig", s.handleUpdateConfig)
	s.handle(mux, "POST /api/addIncome", s.handleAddIncome)
	s.handle(mux, "POST /api/editIncome", s.handleEditIncome)
	s.handle(mux, "POST /api/addExpense", s.handleAddExpense)
	s.handle(mux, "POST /api/editExpense", s.handleEditExpense)
	s.handle(mux, "POST /api/addTask", s.handleAddTask)
	s.handle(mux, "POST /api/updateTask", s.handleUpdateTask)
	s.handle(mux, "POST /api/editTask", s.handleEditTask)
	s.handle(mux, "GET /api/export/csv", s.handleExportCSV)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if staticFS, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
		s.handle(mux, "GET /{$}", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFileFS(w, r, staticFS, "index.html")
		})
	} else {
		s.logger.Error("Failed to load embedded dashboard", log.FieldError, err)
	}

	s.Addr = addr
	s.Handler = cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	})(mux)
	s.ReadHeaderTimeout = 5 * time.Second
	s.ReadTimeout = 15 * time.Second
	s.WriteTimeout = 30 * time.Second
	s.IdleTimeout = 60 * time.Second

	return s
}

// Shutdown stops the rate limiter cleanup before draining connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.stop()
	return s.Server.Shutdown(ctx)
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, s.withRequestContext(pattern, h))
}

// withRequestContext assigns a request id, attaches a request logger, applies
// security headers and POST rate limiting, and logs completion.
func (s *Server) withRequestContext(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		logger := s.logger.With(log.FieldRequestID, requestID, log.FieldClientIP, clientIP)
		ctx := log.NewContext(r.Context(), logger)
		r = r.WithContext(ctx)

		logger.DebugContext(ctx, "Request started",
			log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.UserAgent()).ToSlice()...)

		setSecurityHeaders(w)
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded", log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			rw.Header().Set("Retry-After", "60")
			writeFailure(rw, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded, try again later")
		} else {
			next(rw, r)
		}

		duration := time.Since(start)
		observeRequest(route, rw.statusCode, duration.Seconds())
		logger.InfoContext(ctx, "Request completed",
			log.NewFields().
				WithHTTPRequest(r.Method, r.URL.Path, r.UserAgent()).
				WithHTTPResponse(rw.statusCode, duration.Milliseconds()).
				ToSlice()...)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
