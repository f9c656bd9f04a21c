// Package pool 提供通用的固定容量阻塞资源池
//
// 设计说明:
// 1. 容量固定,所有资源在构造时由注入的工厂函数预先建立,进程生命周期内复用
// 2. Acquire在池耗尽时阻塞调用方,而不是失败或无限制新建
// 3. 通过context支持取消:调用方在等待期间被取消时返回ErrAcquireCancelled
// 4. 工厂函数由构造方注入,测试可以传入构造隔离资源的工厂,对调用方透明
//
// 局限(有意保留):池不做健康检查,坏掉的资源不会被剔除或重建
package pool

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrAcquireCancelled 等待资源期间被取消
	ErrAcquireCancelled = errors.New("pool: acquire cancelled while waiting")

	// ErrClosed 池已关闭
	ErrClosed = errors.New("pool: pool is closed")

	// ErrForeignResource 归还的资源不属于本池
	ErrForeignResource = errors.New("pool: resource does not belong to this pool")
)

// Factory 建立一个新资源
type Factory[T any] func() (T, error)

// Closer 释放资源(池关闭时对每个资源调用一次)
type Closer[T any] func(T) error

// Pool 固定容量阻塞资源池
//
// 要点:
// 1. 内部用带缓冲channel承载空闲资源,channel的阻塞收发就是池的排队语义
// 2. 每次Acquire必须对应一次Release,任何退出路径都不能遗漏,否则池会饿死
type Pool[T any] struct {
	resources chan T
	closeFn   Closer[T]
	size      int

	mu     sync.Mutex
	closed bool
}

// New 创建资源池并预建所有资源
//
// 参数:
//
//	size: 池容量(如10),必须>0
//	factory: 资源工厂,构造时调用size次
//	closeFn: 资源释放函数,可以为nil(无需释放的资源)
//
// 任何一个资源建立失败,已建立的资源会被释放,返回错误
func New[T any](size int, factory Factory[T], closeFn Closer[T]) (*Pool[T], error) {
	if size <= 0 {
		return nil, errors.New("pool: size must be positive")
	}
	if factory == nil {
		return nil, errors.New("pool: factory is required")
	}

	p := &Pool[T]{
		resources: make(chan T, size),
		closeFn:   closeFn,
		size:      size,
	}

	for i := 0; i < size; i++ {
		res, err := factory()
		if err != nil {
			p.Close()
			return nil, err
		}
		p.resources <- res
	}

	return p, nil
}

// Acquire 获取一个资源,池耗尽时阻塞直到有资源被归还
//
// 返回的资源归调用方独占,用完必须调用Release归还。
// 等待期间ctx被取消时返回ErrAcquireCancelled(包装了ctx.Err(),
// 可用errors.Is(err, context.Canceled)区分取消原因)
func (p *Pool[T]) Acquire(ctx context.Context) (T, error) {
	var zero T

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return zero, ErrClosed
	}
	p.mu.Unlock()

	select {
	case res, ok := <-p.resources:
		if !ok {
			return zero, ErrClosed
		}
		return res, nil
	case <-ctx.Done():
		return zero, errors.Join(ErrAcquireCancelled, ctx.Err())
	}
}

// Release 归还一个此前通过Acquire获取的资源
//
// 调用方必须保证每次Acquire恰好归还一次;归还从未获取过的资源会
// 超出池容量,返回ErrForeignResource并丢弃该资源
func (p *Pool[T]) Release(res T) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		// 池已关闭,直接释放资源
		if p.closeFn != nil {
			return p.closeFn(res)
		}
		return nil
	}

	select {
	case p.resources <- res:
		return nil
	default:
		if p.closeFn != nil {
			_ = p.closeFn(res)
		}
		return ErrForeignResource
	}
}

// Available 当前空闲资源数(仅用于监控/测试,读取后即可能失效)
func (p *Pool[T]) Available() int {
	return len(p.resources)
}

// Size 池容量
func (p *Pool[T]) Size() int {
	return p.size
}

// Close 关闭池并释放所有空闲资源
//
// 已借出的资源在之后Release时被释放。重复Close是安全的
func (p *Pool[T]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.resources)
	p.mu.Unlock()

	var firstErr error
	for res := range p.resources {
		if p.closeFn != nil {
			if err := p.closeFn(res); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
