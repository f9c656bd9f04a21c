package tracing

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// TestInitTracer 测试Tracer初始化
func TestInitTracer(t *testing.T) {
	shutdown, err := InitTracer("test-service", "localhost:4317")
	if err != nil {
		t.Fatalf("初始化Tracer失败: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			t.Errorf("关闭Tracer失败: %v", err)
		}
	}()

	if otel.Tracer("test") == nil {
		t.Error("全局TracerProvider未设置")
	}
}

// TestStartSpan 测试Span创建与父子关系
func TestStartSpan(t *testing.T) {
	shutdown, err := InitTracer("test-service", "localhost:4317")
	if err != nil {
		t.Fatalf("初始化Tracer失败: %v", err)
	}
	defer shutdown(context.Background())

	t.Run("创建根Span", func(t *testing.T) {
		ctx, span := StartSpan(context.Background(), "test-service", "TestOperation")
		defer span.End()
		_ = ctx

		if !span.SpanContext().IsValid() {
			t.Error("Span无效")
		}

		traceID := span.SpanContext().TraceID().String()
		if traceID == "" || traceID == "00000000000000000000000000000000" {
			t.Errorf("TraceID无效: %s", traceID)
		}
	})

	t.Run("创建子Span", func(t *testing.T) {
		ctx, rootSpan := StartSpan(context.Background(), "test-service", "RootOperation")
		defer rootSpan.End()

		rootTraceID := rootSpan.SpanContext().TraceID().String()
		rootSpanID := rootSpan.SpanContext().SpanID().String()

		_, childSpan := StartSpan(ctx, "test-service", "ChildOperation")
		defer childSpan.End()

		// 子Span继承TraceID,有独立SpanID
		if childSpan.SpanContext().TraceID().String() != rootTraceID {
			t.Errorf("子Span的TraceID不匹配: root=%s, child=%s",
				rootTraceID, childSpan.SpanContext().TraceID())
		}
		if childSpan.SpanContext().SpanID().String() == rootSpanID {
			t.Error("子Span的SpanID不应与根Span相同")
		}
	})
}

// TestExtractTraceID 测试TraceID提取
func TestExtractTraceID(t *testing.T) {
	shutdown, err := InitTracer("test-service", "localhost:4317")
	if err != nil {
		t.Fatalf("初始化Tracer失败: %v", err)
	}
	defer shutdown(context.Background())

	t.Run("从有效Context提取", func(t *testing.T) {
		ctx, span := StartSpan(context.Background(), "test-service", "TestExtract")
		defer span.End()

		traceID := ExtractTraceID(ctx)
		if len(traceID) != 32 {
			t.Errorf("TraceID长度错误: expected=32, got=%d", len(traceID))
		}

		spanID := ExtractSpanID(ctx)
		if len(spanID) != 16 {
			t.Errorf("SpanID长度错误: expected=16, got=%d", len(spanID))
		}
	})

	t.Run("从无Span的Context提取", func(t *testing.T) {
		if got := ExtractTraceID(context.Background()); got != "" {
			t.Errorf("期望空字符串，实际: %s", got)
		}
		if got := ExtractSpanID(context.Background()); got != "" {
			t.Errorf("期望空字符串，实际: %s", got)
		}
	})
}

// TestConfirmPurchaseTrace 模拟确认购买的完整链路
func TestConfirmPurchaseTrace(t *testing.T) {
	shutdown, err := InitTracer("test-service", "localhost:4317")
	if err != nil {
		t.Fatalf("初始化Tracer失败: %v", err)
	}
	defer shutdown(context.Background())

	if err := confirmPurchase(context.Background(), 123); err != nil {
		t.Errorf("确认购买失败: %v", err)
	}
}

func confirmPurchase(ctx context.Context, userID uint) error {
	ctx, span := StartSpan(ctx, "test-service", "ConfirmPurchase")
	defer span.End()

	span.SetAttributes(attribute.Int("user_id", int(userID)))

	if err := validateStock(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := recordPurchase(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "购买确认成功")
	return nil
}

func validateStock(ctx context.Context) error {
	_, span := StartSpan(ctx, "test-service", "ValidateStock")
	defer span.End()

	time.Sleep(10 * time.Millisecond) // 模拟库存校验耗时
	span.SetStatus(codes.Ok, "库存充足")
	return nil
}

func recordPurchase(ctx context.Context) error {
	_, span := StartSpan(ctx, "test-service", "RecordPurchase")
	defer span.End()

	time.Sleep(15 * time.Millisecond) // 模拟落库耗时
	span.SetStatus(codes.Ok, "购买记录已写入")
	return nil
}
