// Package telemetry records assistant and API metrics. CloudWatch is used
// when metrics are enabled; otherwise observations go to the structured log.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"weatherassistant/internal/config"
	"weatherassistant/internal/types"
)

// putTimeout bounds a single PutMetricData call made outside a request context.
const putTimeout = 2 * time.Second

// Collector receives both per-query and per-request observations.
type Collector interface {
	RecordQuery(ctx context.Context, intent types.Intent, result string)
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// New returns a CloudWatch collector when metrics are enabled and a log
// collector otherwise.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Collector, error) {
	if !cfg.Observability.MetricsEnabled {
		return NewLogMetrics(logger), nil
	}

	client, err := NewCloudWatchClient(ctx, cfg.AWS.Region, cfg.AWS.EndpointURL)
	if err != nil {
		return nil, err
	}
	return NewCloudWatchMetrics(client, cfg.Observability.MetricNamespace, logger), nil
}

// NewCloudWatchClient loads the default AWS credential chain for region. A
// non-empty endpoint overrides the service URL (LocalStack).
func NewCloudWatchClient(ctx context.Context, region, endpoint string) (*cloudwatch.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// CloudWatchMetrics emits metrics to AWS CloudWatch.
//
// Metrics emitted:
//   - QueryHandled: Dims {Intent, Result} -- one per pipeline query
//   - APILatency: Dims {Method, Endpoint, Status} -- per HTTP request, ms
//   - APIRequestCount: Dims {Method, Endpoint, Status} -- per HTTP request
//
// Publishing failures are logged and never surface to callers.
type CloudWatchMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

var _ Collector = (*CloudWatchMetrics)(nil)

// NewCloudWatchMetrics creates a collector publishing to namespace, or to
// types.MetricNamespace when namespace is empty.
func NewCloudWatchMetrics(client CloudWatchClient, namespace string, logger *slog.Logger) *CloudWatchMetrics {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	return &CloudWatchMetrics{client: client, namespace: namespace, logger: logger}
}

// RecordQuery emits a QueryHandled count. Result is "success" or a failure kind.
func (m *CloudWatchMetrics) RecordQuery(ctx context.Context, intent types.Intent, result string) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(types.MetricQueryHandled),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					dimension(types.DimIntent, string(intent)),
					dimension(types.DimResult, result),
				},
			},
		},
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), putTimeout)
	defer cancel()

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to record query metric",
			"error", err.Error(),
			"intent", string(intent),
			"result", result,
		)
	}
}

// RecordRequest emits APILatency and APIRequestCount in a single call.
func (m *CloudWatchMetrics) RecordRequest(method, endpoint, status string, duration time.Duration) {
	dims := []cwtypes.Dimension{
		dimension(types.DimMethod, method),
		dimension(types.DimEndpoint, endpoint),
		dimension(types.DimStatus, status),
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(types.MetricAPILatency),
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Dimensions: dims,
			},
			{
				MetricName: aws.String(types.MetricAPIRequestCount),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: dims,
			},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), putTimeout)
	defer cancel()

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to record request metric",
			"error", err.Error(),
			"method", method,
			"endpoint", endpoint,
			"status", status,
		)
	}
}

func dimension(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

// LogMetrics writes observations to the structured log at Debug level.
type LogMetrics struct {
	logger *slog.Logger
}

var _ Collector = (*LogMetrics)(nil)

// NewLogMetrics creates a LogMetrics.
func NewLogMetrics(logger *slog.Logger) *LogMetrics {
	return &LogMetrics{logger: logger.With("component", "metrics")}
}

func (m *LogMetrics) RecordQuery(ctx context.Context, intent types.Intent, result string) {
	m.logger.DebugContext(ctx, types.MetricQueryHandled,
		types.DimIntent, string(intent),
		types.DimResult, result,
	)
}

func (m *LogMetrics) RecordRequest(method, endpoint, status string, duration time.Duration) {
	m.logger.Debug(types.MetricAPILatency,
		types.DimMethod, method,
		types.DimEndpoint, endpoint,
		types.DimStatus, status,
		"duration_ms", duration.Milliseconds(),
	)
}
