package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"activityScope/internal/feed"
	"activityScope/internal/indexer"
	"activityScope/internal/model"
)

// EventStore loads classified events page by page.
type EventStore interface {
	LoadEvents(ctx context.Context, account string, beforeVersion uint64, limit int) (model.Page, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// ClassifyErrorStore lists the bundles of an account that failed
// classification. Stores implementing it also serve the errors route.
type ClassifyErrorStore interface {
	LoadClassifyErrors(ctx context.Context, account string) ([]model.ClassifyError, error)
}

// maxPagesPerRequest caps the pages parameter.
const maxPagesPerRequest = 10

// Options configures the HTTP handler.
type Options struct {
	PageSize          int
	MaxPageSize       int
	RequestsPerSecond float64
	Burst             int
	CacheTTL          time.Duration
	// Now is the reference instant for section grouping.
	Now    func() time.Time
	Logger *zap.Logger
}

// ActivityResponse is one or more pages of an account's grouped activity.
// MinVersion is the `before` value of the next request and is null once
// history is exhausted.
type ActivityResponse struct {
	Sections   []feed.Section `json:"sections"`
	MinVersion *uint64        `json:"min_version"`
}

// ClassifyErrorsResponse lists an account's classification failures.
type ClassifyErrorsResponse struct {
	Errors []model.ClassifyError `json:"errors"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	store  EventStore
	opts   Options
	pages  *cache.Cache
	logger *zap.Logger
}

// NewRouter builds the activity feed HTTP API.
func NewRouter(store EventStore, opts Options) http.Handler {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.MaxPageSize < opts.PageSize {
		opts.MaxPageSize = opts.PageSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 60 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	h := &handler{
		store:  store,
		opts:   opts,
		pages:  cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		logger: opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		r.Use(rateLimit(rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst), h.logger))
	}

	r.Get("/healthz", h.health)
	r.Get("/accounts/{address}/activity", h.activity)
	if errorStore, ok := store.(ClassifyErrorStore); ok {
		r.Get("/accounts/{address}/errors", h.classifyErrors(errorStore))
	}
	return r
}

func (h *handler) activity(w http.ResponseWriter, r *http.Request) {
	account, err := indexer.ParseAccountAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	query := r.URL.Query()
	var before uint64
	if raw := query.Get("before"); raw != "" {
		before, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid before: " + raw})
			return
		}
	}
	limit := h.opts.PageSize
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > h.opts.MaxPageSize {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit: " + raw})
			return
		}
	}
	pageCount := 1
	if raw := query.Get("pages"); raw != "" {
		pageCount, err = strconv.Atoi(raw)
		if err != nil || pageCount <= 0 || pageCount > maxPagesPerRequest {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid pages: " + raw})
			return
		}
	}
	filter, err := feed.ParseFilter(query.Get("filter"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	pages, next, err := h.loadPages(r.Context(), account, before, limit, pageCount)
	if err != nil {
		h.logger.Error("load events failed", zap.String("account", account), zap.Uint64("before", before), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load activity"})
		return
	}

	for i := range pages {
		pages[i].Events = filter.Apply(pages[i].Events)
	}
	resp := ActivityResponse{
		Sections:   feed.GroupPages(pages, h.opts.Now()),
		MinVersion: next,
	}
	if resp.Sections == nil {
		resp.Sections = []feed.Section{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// loadPages follows the version cursor for up to count pages. The returned
// cursor is nil once a page holds fewer than limit transactions.
func (h *handler) loadPages(ctx context.Context, account string, before uint64, limit, count int) ([]model.Page, *uint64, error) {
	pages := make([]model.Page, 0, count)
	for len(pages) < count {
		page, err := h.loadPage(ctx, account, before, limit)
		if err != nil {
			return nil, nil, err
		}
		pages = append(pages, page)
		if distinctVersions(page.Events) < limit {
			return pages, nil, nil
		}
		before = page.MinVersion
	}
	next := before
	return pages, &next, nil
}

func distinctVersions(events []model.ActivityEvent) int {
	count := 0
	var last uint64
	for i, event := range events {
		version := event.Base().Version
		if i == 0 || version != last {
			count++
			last = version
		}
	}
	return count
}

// loadPage serves recently loaded pages from memory.
func (h *handler) loadPage(ctx context.Context, account string, before uint64, limit int) (model.Page, error) {
	key := account + ":" + strconv.FormatUint(before, 10) + ":" + strconv.Itoa(limit)
	if cached, ok := h.pages.Get(key); ok {
		return cached.(model.Page), nil
	}
	page, err := h.store.LoadEvents(ctx, account, before, limit)
	if err != nil {
		return model.Page{}, err
	}
	h.pages.Set(key, page, cache.DefaultExpiration)
	return page, nil
}

func (h *handler) classifyErrors(store ClassifyErrorStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := indexer.ParseAccountAddress(chi.URLParam(r, "address"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		records, err := store.LoadClassifyErrors(r.Context(), account)
		if err != nil {
			h.logger.Error("load classify errors failed", zap.String("account", account), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load classify errors"})
			return
		}
		if records == nil {
			records = []model.ClassifyError{}
		}
		writeJSON(w, http.StatusOK, ClassifyErrorsResponse{Errors: records})
	}
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "database unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func rateLimit(limiter *rate.Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logger.Warn("rate limit exceeded", zap.String("path", r.URL.Path))
				writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: http.StatusText(http.StatusTooManyRequests)})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
