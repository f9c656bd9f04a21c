package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestPool_AcquireRelease 测试基本的获取与归还
func TestPool_AcquireRelease(t *testing.T) {
	var built int32
	p, err := New(3, func() (int, error) {
		return int(atomic.AddInt32(&built, 1)), nil
	}, nil)
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}
	defer p.Close()

	if built != 3 {
		t.Errorf("期望预建3个资源，实际%d个", built)
	}
	if p.Available() != 3 {
		t.Errorf("期望空闲3个，实际%d个", p.Available())
	}

	res, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("获取资源失败: %v", err)
	}
	if p.Available() != 2 {
		t.Errorf("借出后期望空闲2个，实际%d个", p.Available())
	}

	if err := p.Release(res); err != nil {
		t.Fatalf("归还资源失败: %v", err)
	}
	if p.Available() != 3 {
		t.Errorf("归还后期望空闲3个，实际%d个", p.Available())
	}
}

// TestPool_BlocksWhenExhausted 测试池耗尽时阻塞，归还后唤醒
func TestPool_BlocksWhenExhausted(t *testing.T) {
	p, err := New(1, func() (string, error) { return "conn", nil }, nil)
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}
	defer p.Close()

	res, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("获取资源失败: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		r, err := p.Acquire(context.Background())
		if err != nil {
			t.Errorf("等待方获取失败: %v", err)
		}
		close(acquired)
		_ = p.Release(r)
	}()

	// 池已耗尽，等待方不应立即返回
	select {
	case <-acquired:
		t.Fatal("池耗尽时Acquire不应该返回")
	case <-time.After(50 * time.Millisecond):
	}

	// 归还后等待方应被唤醒
	if err := p.Release(res); err != nil {
		t.Fatalf("归还资源失败: %v", err)
	}
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("归还后等待方未被唤醒")
	}
}

// TestPool_AcquireCancelled 测试等待期间取消
func TestPool_AcquireCancelled(t *testing.T) {
	p, err := New(1, func() (string, error) { return "conn", nil }, nil)
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}
	defer p.Close()

	res, _ := p.Acquire(context.Background())
	defer p.Release(res)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = p.Acquire(ctx)
	if !errors.Is(err, ErrAcquireCancelled) {
		t.Errorf("期望ErrAcquireCancelled，实际%v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("期望能通过errors.Is取到ctx错误，实际%v", err)
	}
}

// TestPool_ConcurrentBound 测试并发下借出数量不超过容量
func TestPool_ConcurrentBound(t *testing.T) {
	const size = 5
	p, err := New(size, func() (int, error) { return 0, nil }, nil)
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}
	defer p.Close()

	var inUse, maxInUse int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.Acquire(context.Background())
			if err != nil {
				t.Errorf("获取资源失败: %v", err)
				return
			}
			cur := atomic.AddInt32(&inUse, 1)
			for {
				old := atomic.LoadInt32(&maxInUse)
				if cur <= old || atomic.CompareAndSwapInt32(&maxInUse, old, cur) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inUse, -1)
			_ = p.Release(res)
		}()
	}
	wg.Wait()

	if maxInUse > size {
		t.Errorf("并发借出峰值%d超过池容量%d", maxInUse, size)
	}
}

// TestPool_FactoryFailure 测试工厂失败时已建资源被回收
func TestPool_FactoryFailure(t *testing.T) {
	var built, closed int32
	_, err := New(3, func() (int, error) {
		if atomic.AddInt32(&built, 1) > 1 {
			return 0, errors.New("dial failed")
		}
		return 1, nil
	}, func(int) error {
		atomic.AddInt32(&closed, 1)
		return nil
	})
	if err == nil {
		t.Fatal("期望创建失败")
	}
	if atomic.LoadInt32(&closed) != 1 {
		t.Errorf("期望已建立的1个资源被回收，实际回收%d个", closed)
	}
}

// TestPool_Close 测试关闭后的行为
func TestPool_Close(t *testing.T) {
	var closed int32
	p, err := New(2, func() (int, error) { return 1, nil }, func(int) error {
		atomic.AddInt32(&closed, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}

	res, _ := p.Acquire(context.Background())

	if err := p.Close(); err != nil {
		t.Fatalf("关闭池失败: %v", err)
	}
	if atomic.LoadInt32(&closed) != 1 {
		t.Errorf("期望关闭1个空闲资源，实际%d个", closed)
	}

	// 关闭后获取应失败
	if _, err := p.Acquire(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("期望ErrClosed，实际%v", err)
	}

	// 借出的资源在归还时被释放
	_ = p.Release(res)
	if atomic.LoadInt32(&closed) != 2 {
		t.Errorf("期望共关闭2个资源，实际%d个", closed)
	}

	// 重复关闭安全
	if err := p.Close(); err != nil {
		t.Errorf("重复关闭应返回nil，实际%v", err)
	}
}
