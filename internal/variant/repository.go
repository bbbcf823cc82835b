package variant

import "context"

// Repository 是品种注册表的持久化端口。
// 实现必须保证 Create 对同名品种返回 ErrDuplicateVariant，且 List 按插入顺序返回。
type Repository interface {
	Create(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]string, error)
}
