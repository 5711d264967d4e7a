package conc

import "errors"

// Future 异步任务结果
type Future[T any] struct {
	ch    chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{ch: make(chan struct{})}
}

func (f *Future[T]) complete(value T, err error) {
	f.value, f.err = value, err
	close(f.ch)
}

// Inner 任务完成时关闭的 channel，可用于 select
func (f *Future[T]) Inner() <-chan struct{} {
	return f.ch
}

// Await 阻塞直到任务完成
func (f *Future[T]) Await() (T, error) {
	<-f.ch
	return f.value, f.err
}

// Value 阻塞并返回结果值
func (f *Future[T]) Value() T {
	<-f.ch
	return f.value
}

// Err 阻塞并返回任务错误
func (f *Future[T]) Err() error {
	<-f.ch
	return f.err
}

// Done 任务是否已经完成，不阻塞
func (f *Future[T]) Done() bool {
	select {
	case <-f.ch:
		return true
	default:
		return false
	}
}

// Go 在新 goroutine 中执行 fn
func Go[T any](fn func() (T, error)) *Future[T] {
	future := newFuture[T]()
	go func() {
		future.complete(run(fn))
	}()
	return future
}

// AwaitAll 等待全部 future，返回所有错误的合并
func AwaitAll[T any](futures ...*Future[T]) error {
	var errs []error
	for _, f := range futures {
		if err := f.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func run[T any](fn func() (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn()
}
