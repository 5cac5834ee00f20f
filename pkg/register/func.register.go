package register

import "sync"

// 进程级的初始化函数注册表。各 store 在 init 中登记自己，
// Provider 启动时统一回放，避免手工维护一份装配清单。
var (
	mu       sync.RWMutex
	handlers = make(map[any][]any)
)

type Handler[T any] func(T)

// RegisterFunc 以 key 分组追加一个初始化函数，通常在 init 中调用
func RegisterFunc[T any](key any, handler Handler[T]) {
	mu.Lock()
	defer mu.Unlock()
	handlers[key] = append(handlers[key], handler)
}

// ResolveFuncHandlers 取出 key 下所有与 T 匹配的初始化函数，
// 类型不符的登记项会被跳过
func ResolveFuncHandlers[T any](key any) []Handler[T] {
	mu.RLock()
	defer mu.RUnlock()

	matched := make([]Handler[T], 0, len(handlers[key]))
	for _, item := range handlers[key] {
		if h, ok := item.(Handler[T]); ok {
			matched = append(matched, h)
		}
	}
	return matched
}
