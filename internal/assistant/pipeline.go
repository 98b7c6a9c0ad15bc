// Package assistant wires query understanding, the weather provider and the
// renderers into the single entry point used by every front end.
package assistant

import (
	"context"
	"log/slog"

	"weatherassistant/internal/query"
	"weatherassistant/internal/render"
	"weatherassistant/internal/types"
)

var errEmptyResult = types.NewProviderError(types.FailureUnknown,
	"An unexpected error occurred: the weather service returned no data", nil)

// QueryRecorder receives one observation per handled query. Result is
// "success" or the failure kind.
type QueryRecorder interface {
	RecordQuery(ctx context.Context, intent types.Intent, result string)
}

// Pipeline answers one weather question at a time. It holds no per-query
// state and is safe for concurrent use.
type Pipeline struct {
	provider types.WeatherProvider
	logger   *slog.Logger
	recorder QueryRecorder
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used when no request-scoped logger is present
// in the context.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithRecorder reports every handled query to r.
func WithRecorder(r QueryRecorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// New creates a Pipeline backed by provider.
func New(provider types.WeatherProvider, opts ...Option) *Pipeline {
	p := &Pipeline{
		provider: provider,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle classifies the query, extracts the city, fetches the matching data
// and renders it. Failures never escape as errors: they are rendered into
// Text with Success=false.
func (p *Pipeline) Handle(ctx context.Context, raw string) types.Response {
	logger := types.LoggerFromContext(ctx, p.logger)

	intent := query.Classify(raw)
	city := query.ExtractCity(raw)

	logger.Debug("query analyzed", "intent", intent, "city", city)

	if city == "" {
		logger.Info("no city in query", "kind", types.FailureExtraction)
		p.record(ctx, intent, types.ErrCityNotUnderstood)
		return types.Response{Text: render.Failure(types.ErrCityNotUnderstood), Success: false}
	}

	var (
		text string
		err  error
	)
	switch intent {
	case types.IntentForecast:
		text, err = p.forecast(ctx, city)
	default:
		text, err = p.current(ctx, city, query.AsksRainToday(raw))
	}

	if err != nil {
		logger.Warn("weather lookup failed",
			"intent", intent,
			"city", city,
			"kind", types.KindOf(err),
			"error", err,
		)
		p.record(ctx, intent, err)
		return types.Response{Text: render.Failure(err), Success: false}
	}

	logger.Info("query answered", "intent", intent, "city", city)
	p.record(ctx, intent, nil)
	return types.Response{Text: text, Success: true}
}

func (p *Pipeline) current(ctx context.Context, city string, askedRainToday bool) (string, error) {
	c, err := p.provider.GetCurrent(ctx, city)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", errEmptyResult
	}
	return render.Current(*c, askedRainToday), nil
}

func (p *Pipeline) forecast(ctx context.Context, city string) (string, error) {
	f, err := p.provider.GetForecast(ctx, city)
	if err != nil {
		return "", err
	}
	if f == nil {
		return "", errEmptyResult
	}
	return render.Forecast(*f), nil
}

func (p *Pipeline) record(ctx context.Context, intent types.Intent, err error) {
	if p.recorder == nil {
		return
	}
	result := "success"
	if err != nil {
		result = string(types.KindOf(err))
	}
	p.recorder.RecordQuery(ctx, intent, result)
}
