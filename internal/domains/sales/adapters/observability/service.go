package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	salesdomain "github.com/Apurer/go-sales-api-server/internal/domains/sales/domain"
	salesports "github.com/Apurer/go-sales-api-server/internal/domains/sales/ports"
)

const tracerName = "github.com/Apurer/go-sales-api-server/internal/domains/sales/adapters/observability/service"

// Service decorates the sales service with tracing, logging, and metrics.
type Service struct {
	inner   salesports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core sales service.
func New(inner salesports.Service, opts ...Option) salesports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreateSale(ctx context.Context, input salesports.CreateSaleInput) (*salesdomain.SaleOrder, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.CreateSale",
		trace.WithAttributes(attribute.Int("sale.items", len(input.Items))))
	defer span.End()

	s.logInfo(ctx, "creating sale", slog.Int("items", len(input.Items)))
	result, err := s.inner.CreateSale(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create sale")
	}
	span.SetAttributes(attribute.Int64("sale.id", result.ID))
	s.metrics.recordCreated(ctx, result.Status)
	s.logInfo(ctx, "sale created",
		slog.Int64("sale.id", result.ID),
		slog.Int("items", len(result.Items)),
		slog.String("status", result.Status))
	return result, nil
}

func (s *Service) GetSale(ctx context.Context, id int64) (*salesdomain.SaleOrder, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.GetSale", trace.WithAttributes(attribute.Int64("sale.id", id)))
	defer span.End()

	result, err := s.inner.GetSale(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load sale", slog.Int64("sale.id", id))
	}
	return result, nil
}

func (s *Service) ListSales(ctx context.Context) ([]*salesdomain.SaleOrder, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.ListSales")
	defer span.End()

	result, err := s.inner.ListSales(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list sales")
	}
	span.SetAttributes(attribute.Int("sales.count", len(result)))
	return result, nil
}

func (s *Service) UpdateSale(ctx context.Context, input salesports.UpdateSaleInput) (*salesdomain.SaleOrder, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.UpdateSale", trace.WithAttributes(attribute.Int64("sale.id", input.ID)))
	defer span.End()

	s.logInfo(ctx, "updating sale", slog.Int64("sale.id", input.ID))
	result, err := s.inner.UpdateSale(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update sale", slog.Int64("sale.id", input.ID))
	}
	s.logInfo(ctx, "sale updated", slog.Int64("sale.id", result.ID), slog.String("status", result.Status))
	return result, nil
}

func (s *Service) DeleteSale(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "SalesService.DeleteSale", trace.WithAttributes(attribute.Int64("sale.id", id)))
	defer span.End()

	s.logInfo(ctx, "deleting sale", slog.Int64("sale.id", id))
	if err := s.inner.DeleteSale(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete sale", slog.Int64("sale.id", id))
	}
	s.logInfo(ctx, "sale deleted", slog.Int64("sale.id", id))
	return nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	salesCreated metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	salesCreated, _ := m.Int64Counter("sales.service.orders_created", metric.WithDescription("Number of sale orders created"))
	return serviceMetrics{salesCreated: salesCreated}
}

func (m serviceMetrics) recordCreated(ctx context.Context, status string) {
	if m.salesCreated != nil {
		m.salesCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("sale.status", status)))
	}
}

var _ salesports.Service = (*Service)(nil)
