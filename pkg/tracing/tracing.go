// Package tracing 提供基于OpenTelemetry的分布式追踪
//
// 核心概念:
// - Trace: 一次完整请求链路(如确认购买从HTTP入口到落库、发事件)
// - Span: 链路中的一个操作单元(如扣减库存)
// - SpanContext: 跨进程传递的TraceID/SpanID元数据
//
// 使用OTLP协议导出(厂商中立,Jaeger/Zipkin/Datadog均可接收)。
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// InitTracer 初始化全局Tracer Provider
//
// 参数:
//   - serviceName: 服务名称(在追踪UI中分组显示)
//   - endpoint: OTLP gRPC端点(如 localhost:4317)
//
// 返回关闭函数,程序退出前调用以刷新未发送的Span。
//
// 设计要点:
// 1. 采样策略当前为AlwaysSample,生产环境建议换成
//    sdktrace.TraceIDRatioBased按比例采样
// 2. BatchSpanProcessor批量发送,性能优于逐条发送
func InitTracer(serviceName, endpoint string) (func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exporter, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(), // 禁用TLS(生产环境应启用)
	)
	if err != nil {
		return nil, fmt.Errorf("创建OTLP exporter失败: %w", err)
	}

	// 资源属性附加到所有Span上,便于在UI中筛选
	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("创建资源属性失败: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	// 全局Provider让业务代码直接otel.Tracer()获取,
	// 第三方库(otelgin等)也自动使用
	otel.SetTracerProvider(tp)

	// W3C Trace Context负责跨服务传递TraceID,
	// Baggage传递自定义键值对
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}

	return shutdown, nil
}

// StartSpan 创建一个新Span(便捷函数)
//
// 如果ctx已包含Span,新Span自动成为其子Span。
// 必须用返回的ctx调用下游函数,否则调用树会断开。
//
// 示例:
//
//	ctx, span := tracing.StartSpan(ctx, "libshop", "ConfirmPurchase")
//	defer span.End()
func StartSpan(ctx context.Context, tracerName, spanName string) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	return tracer.Start(ctx, spanName)
}

// ExtractTraceID 从Context提取TraceID(用于日志关联)
func ExtractTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().TraceID().String()
}

// ExtractSpanID 从Context提取SpanID
func ExtractSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().SpanID().String()
}
