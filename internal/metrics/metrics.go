// Package metrics publishes processing outcomes to CloudWatch.
package metrics

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"casenotify/internal/types"
)

// Metric and dimension names.
const (
	MetricEventProcessed = "EventProcessed"
	MetricEventLatency   = "EventProcessedLatency"
	MetricDeliveryReport = "DeliveryReceipt"
	MetricAPIRequest     = "APIRequest"
	MetricAPILatency     = "APIRequestLatency"

	DimScenario = "Scenario"
	DimStatus   = "Status"
	DimMethod   = "Method"
	DimEndpoint = "Endpoint"
	DimCode     = "StatusCode"
)

// Recorder receives one call per handled event or delivery receipt.
type Recorder interface {
	RecordOutcome(ctx context.Context, scenario string, status types.ProcessingStatus)
	RecordLatency(ctx context.Context, scenario string, duration time.Duration)
	RecordDelivery(ctx context.Context, method types.NotifyMethod, status types.DeliveryStatus)
}

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

var _ Recorder = (*CloudWatchRecorder)(nil)

// CloudWatchRecorder emits:
//   - EventProcessed: Dims {Scenario, Status}
//   - EventProcessedLatency: Dims {Scenario}
//   - DeliveryReceipt: Dims {Method, Status}
//   - APIRequest, APIRequestLatency: Dims {Method, Endpoint, StatusCode}
//
// Publishing errors are logged and otherwise ignored.
type CloudWatchRecorder struct {
	client    CloudWatchClient
	namespace string
	logger    types.Logger
}

// NewCloudWatchRecorder creates a recorder publishing to namespace.
func NewCloudWatchRecorder(client CloudWatchClient, namespace string, logger types.Logger) *CloudWatchRecorder {
	if logger == nil {
		logger = types.NewSlogLogger(nil)
	}
	return &CloudWatchRecorder{client: client, namespace: namespace, logger: logger}
}

// RecordOutcome counts one processed event.
func (r *CloudWatchRecorder) RecordOutcome(ctx context.Context, scenario string, status types.ProcessingStatus) {
	r.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String(MetricEventProcessed),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String(DimScenario), Value: aws.String(scenario)},
			{Name: aws.String(DimStatus), Value: aws.String(string(status))},
		},
	})
}

// RecordLatency records the processing time in milliseconds.
func (r *CloudWatchRecorder) RecordLatency(ctx context.Context, scenario string, duration time.Duration) {
	r.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String(MetricEventLatency),
		Value:      aws.Float64(float64(duration.Milliseconds())),
		Unit:       cwtypes.StandardUnitMilliseconds,
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String(DimScenario), Value: aws.String(scenario)},
		},
	})
}

// RecordDelivery counts one delivery receipt.
func (r *CloudWatchRecorder) RecordDelivery(ctx context.Context, method types.NotifyMethod, status types.DeliveryStatus) {
	r.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String(MetricDeliveryReport),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String(DimMethod), Value: aws.String(string(method))},
			{Name: aws.String(DimStatus), Value: aws.String(string(status))},
		},
	})
}

// RecordRequest counts one HTTP request and its latency. It has no request
// context because it runs after the response is written.
func (r *CloudWatchRecorder) RecordRequest(method, endpoint, status string, duration time.Duration) {
	dims := []cwtypes.Dimension{
		{Name: aws.String(DimMethod), Value: aws.String(method)},
		{Name: aws.String(DimEndpoint), Value: aws.String(endpoint)},
		{Name: aws.String(DimCode), Value: aws.String(status)},
	}
	r.put(context.Background(),
		cwtypes.MetricDatum{
			MetricName: aws.String(MetricAPIRequest),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: dims,
		},
		cwtypes.MetricDatum{
			MetricName: aws.String(MetricAPILatency),
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
			Dimensions: dims,
		},
	)
}

func (r *CloudWatchRecorder) put(ctx context.Context, data ...cwtypes.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(r.namespace),
		MetricData: data,
	}
	if _, err := r.client.PutMetricData(ctx, input); err != nil {
		r.logger.Error("failed to record metric",
			"error", err.Error(),
			"metric", aws.ToString(data[0].MetricName),
		)
	}
}

// Noop discards every measurement.
type Noop struct{}

func (Noop) RecordOutcome(context.Context, string, types.ProcessingStatus)            {}
func (Noop) RecordLatency(context.Context, string, time.Duration)                     {}
func (Noop) RecordDelivery(context.Context, types.NotifyMethod, types.DeliveryStatus) {}
