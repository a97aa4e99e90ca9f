package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/jonwraymond/postsync/auth"
	"github.com/jonwraymond/postsync/comments"
	"github.com/jonwraymond/postsync/config"
	"github.com/jonwraymond/postsync/filter"
	"github.com/jonwraymond/postsync/health"
	"github.com/jonwraymond/postsync/observe"
	"github.com/jonwraymond/postsync/posts"
	"github.com/jonwraymond/postsync/querycache"
	"github.com/jonwraymond/postsync/request"
	"github.com/jonwraymond/postsync/tags"
	"github.com/jonwraymond/postsync/uistate"
	"github.com/jonwraymond/postsync/users"
)

// Session is one running posts manager.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Lifecycle: create with New, release with Close.
type Session struct {
	cfg    config.Config
	obs    observe.Observer
	mw     *observe.Middleware
	client *request.Client
	cache  *querycache.Cache

	posts    *posts.API
	comments *comments.API
	tags     *tags.API
	users    *users.API

	Filter    *filter.Store
	PostUI    *uistate.Store[posts.Post]
	CommentUI *uistate.Store[comments.Comment]
	UserUI    *uistate.Store[users.Profile]
	Health    *health.Aggregator

	tempIDs atomic.Int64
}

type options struct {
	location   filter.Location
	httpClient *http.Client
	tokens     auth.TokenSource
	logWriter  io.Writer
}

// Option configures a Session.
type Option func(*options)

// WithLocation sets where filter state lives. Default: an empty History.
func WithLocation(loc filter.Location) Option {
	return func(o *options) { o.location = loc }
}

// WithHTTPClient sets the HTTP client requests go through.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithTokenSource sets the bearer token source, overriding the configured
// static token.
func WithTokenSource(ts auth.TokenSource) Option {
	return func(o *options) { o.tokens = ts }
}

// WithLogWriter sets where structured logs are written. Default: stderr.
func WithLogWriter(w io.Writer) Option {
	return func(o *options) { o.logWriter = w }
}

// New wires a session from cfg.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Session, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.location == nil {
		o.location = filter.NewHistory(nil)
	}
	if o.tokens == nil && cfg.Token != "" {
		o.tokens = auth.NewStaticTokenSource(cfg.Token)
	}

	obsCfg := cfg.Observe()
	obsCfg.Logging.Writer = o.logWriter
	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return nil, err
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	reqOpts := []request.Option{
		request.WithHTTPClient(httpClient(o.httpClient, o.tokens)),
		request.WithTimeout(cfg.Timeout),
		request.WithMiddleware(mw),
		request.WithRetry(cfg.RequestRetry()),
		request.WithUserAgent(cfg.UserAgent),
	}
	if bc, ok := cfg.RequestBreaker(); ok {
		bc.OnStateChange = func(from, to request.BreakerState) {
			mw.Logger().Warn(context.Background(), "circuit breaker "+to.String(),
				observe.F("from", from.String()), observe.F("base_url", cfg.BaseURL))
		}
		reqOpts = append(reqOpts, request.WithBreaker(bc))
	}
	client, err := request.New(cfg.BaseURL, reqOpts...)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	s := &Session{
		cfg:    cfg,
		obs:    obs,
		mw:     mw,
		client: client,
		cache: querycache.New(
			querycache.WithFreshnessPolicy(cfg.FreshnessPolicy()),
			querycache.WithFetchTimeout(cfg.Cache.FetchTimeout),
			querycache.WithMiddleware(mw),
		),
		PostUI:    posts.NewStore(),
		CommentUI: comments.NewStore(),
		UserUI:    users.NewStore(),
	}

	var errs []error
	s.posts, err = posts.NewAPI(client)
	errs = append(errs, err)
	s.comments, err = comments.NewAPI(client)
	errs = append(errs, err)
	s.tags, err = tags.NewAPI(client)
	errs = append(errs, err)
	s.users, err = users.NewAPI(client)
	errs = append(errs, err)
	s.Filter, err = filter.NewStore(o.location, filter.WithSkipReset(cfg.Filter.ResetSkip))
	errs = append(errs, err)
	if err := errors.Join(errs...); err != nil {
		s.cache.Close()
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	s.Health = health.NewAggregator(cfg.Timeout)
	s.Health.Register(health.NewBackendChecker(client))
	s.Health.Register(health.NewCacheChecker(s.cache, health.DefaultErrorRatio))

	s.logger().Debug(ctx, "session started", observe.F("base_url", client.BaseURL()))
	return s, nil
}

func httpClient(hc *http.Client, tokens auth.TokenSource) *http.Client {
	if tokens == nil {
		return hc
	}
	if hc == nil {
		return auth.NewHTTPClient(tokens)
	}
	wrapped := *hc
	wrapped.Transport = &auth.Transport{Base: hc.Transport, Source: tokens}
	return &wrapped
}

// Cache returns the session's query cache.
func (s *Session) Cache() *querycache.Cache { return s.cache }

// Client returns the session's request client.
func (s *Session) Client() *request.Client { return s.client }

// Config returns the configuration the session was built from.
func (s *Session) Config() config.Config { return s.cfg }

// SearchBuffer returns a debounced search input bound to the filter store.
func (s *Session) SearchBuffer() *filter.SearchBuffer {
	return s.Filter.SearchBuffer(s.cfg.Filter.SearchDebounce)
}

// Report runs the health checks.
func (s *Session) Report(ctx context.Context) health.Report {
	return s.Health.Report(ctx)
}

// Close drops the cache and flushes telemetry.
func (s *Session) Close(ctx context.Context) error {
	s.cache.Close()
	return s.obs.Shutdown(ctx)
}

func (s *Session) logger() observe.Logger {
	return s.mw.Logger()
}

// nextTempID returns a fresh negative ID for an optimistic row.
func (s *Session) nextTempID() int {
	return -int(s.tempIDs.Add(1))
}
