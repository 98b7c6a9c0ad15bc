package types

// Telemetry metric names. All components MUST use these constants.
const (
	// Metric Names
	MetricQueryHandled    = "QueryHandled"
	MetricAPILatency      = "APILatency"
	MetricAPIRequestCount = "APIRequestCount"

	// Dimension Keys
	DimIntent   = "Intent"
	DimResult   = "Result"
	DimEndpoint = "Endpoint"
	DimMethod   = "Method"
	DimStatus   = "Status"

	// Metric Namespace
	MetricNamespace = "WeatherAssistant"
)
