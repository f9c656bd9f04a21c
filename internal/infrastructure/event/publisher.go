// Package event 业务事件发布适配器
// 把application层的事件接口接到RabbitMQ上,并用熔断器保护:
// 消息中间件故障时快速失败,不拖垮购买确认主链路。
package event

import (
	"context"
	"log"
	"time"

	appbasket "github.com/xiebiao/libshop/internal/application/basket"
	"github.com/xiebiao/libshop/pkg/circuitbreaker"
	"github.com/xiebiao/libshop/pkg/metrics"
	"github.com/xiebiao/libshop/pkg/mq"
)

// Publisher 购买事件发布器
// 实现application/basket.EventPublisher接口
type Publisher struct {
	mq      *mq.Publisher
	breaker *circuitbreaker.CircuitBreaker
}

// NewPublisher 创建事件发布器
func NewPublisher(mqPublisher *mq.Publisher) *Publisher {
	cb := circuitbreaker.NewCircuitBreaker("event-publisher", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	// 状态变化记日志并更新指标
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("熔断器[%s]状态变化: %s -> %s", name, from, to)
		metrics.SetGaugeVec(metrics.CircuitBreakerState,
			map[string]string{"name": name}, float64(to))
	})

	return &Publisher{
		mq:      mqPublisher,
		breaker: cb,
	}
}

// PublishPurchaseConfirmed 发布购买确认事件
// 经熔断器保护,中间件持续故障时直接返回ErrOpenState
func (p *Publisher) PublishPurchaseConfirmed(ctx context.Context, event appbasket.PurchaseConfirmedEvent) error {
	err := p.breaker.Execute(func() error {
		return p.mq.Publish(ctx, mq.RoutingKeyPurchaseConfirmed, event)
	})

	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.IncCounterVec(metrics.CircuitBreakerRequests,
		map[string]string{"name": "event-publisher", "result": result})
	return err
}
