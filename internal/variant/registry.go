package variant

import (
	"context"
	"errors"
	"strings"
)

// ChangeNotifier 在注册表内容变化后被调用，用于让读侧缓存失效
type ChangeNotifier interface {
	Invalidate(ctx context.Context)
}

// Registry 是已知咖啡品种的集合。品种只增不减。
type Registry struct {
	repo     Repository
	notifier ChangeNotifier
}

func NewRegistry(repo Repository) *Registry {
	return &Registry{repo: repo}
}

// SetNotifier 注册变更通知者，必须在开始处理请求之前调用
func (r *Registry) SetNotifier(n ChangeNotifier) {
	r.notifier = n
}

// Create 注册一个新品种。名称按原样保存，唯一性区分大小写。
func (r *Registry) Create(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	if err := r.repo.Create(ctx, name); err != nil {
		return err
	}
	if r.notifier != nil {
		r.notifier.Invalidate(ctx)
	}
	return nil
}

func (r *Registry) Exists(ctx context.Context, name string) (bool, error) {
	return r.repo.Exists(ctx, name)
}

// List 按插入顺序返回所有品种名称
func (r *Registry) List(ctx context.Context) ([]string, error) {
	return r.repo.List(ctx)
}

// Seed 批量注册品种，已存在的品种会被跳过
func (r *Registry) Seed(ctx context.Context, names []string) (int, error) {
	created := 0
	for _, name := range names {
		err := r.Create(ctx, name)
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrDuplicateVariant):
		default:
			return created, err
		}
	}
	return created, nil
}
