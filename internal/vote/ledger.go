package vote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// VariantLookup 是账本对品种注册表的依赖
type VariantLookup interface {
	Exists(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]string, error)
}

// ChangeNotifier 在新投票写入后被调用，用于让读侧缓存失效
type ChangeNotifier interface {
	Invalidate(ctx context.Context)
}

// VariantVotes 是某个品种下按时间顺序排列的全部投票
type VariantVotes struct {
	Variant string `json:"variant"`
	Votes   []Vote `json:"votes"`
}

// Summary 返回 "+赞数 / -踩数" 格式的统计
func (vv VariantVotes) Summary() string {
	return Summarize(vv.Votes)
}

// Ledger 记录投票并在读取时进行汇总。
// 同一品种的 "查重 + 写入" 在一把品种级互斥锁内完成，不同品种之间互不阻塞。
type Ledger struct {
	variants VariantLookup
	repo     Repository
	notifier ChangeNotifier

	locks sync.Map // 品种名 -> *sync.Mutex
	now   func() time.Time
}

func NewLedger(variants VariantLookup, repo Repository) *Ledger {
	return &Ledger{
		variants: variants,
		repo:     repo,
		now:      time.Now,
	}
}

// SetNotifier 注册变更通知者，必须在开始处理请求之前调用
func (l *Ledger) SetNotifier(n ChangeNotifier) {
	l.notifier = n
}

// variantLock 返回某个品种专属的互斥锁。品种不会被删除，所以锁表只会随品种数量增长。
func (l *Ledger) variantLock(variantName string) *sync.Mutex {
	lock, _ := l.locks.LoadOrStore(variantName, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Submit 为指定品种记录一票。
// 失败时账本保持调用前的状态，不做任何重试。
func (l *Ledger) Submit(ctx context.Context, variantName, voterName string, choice Choice) error {
	if !choice.Valid() {
		return ErrInvalidChoice
	}
	if strings.TrimSpace(voterName) == "" {
		return ErrInvalidVoterName
	}

	// 1. 品种必须已存在。品种只增不减，所以这一步可以放在锁外
	exists, err := l.variants.Exists(ctx, variantName)
	if err != nil {
		return fmt.Errorf("无法确认品种是否存在: %w", err)
	}
	if !exists {
		return ErrVariantNotFound
	}

	// 2. 在品种锁内完成查重和写入
	lock := l.variantLock(variantName)
	lock.Lock()
	err = l.repo.Append(ctx, Vote{
		Variant:   variantName,
		Name:      voterName,
		Choice:    choice,
		CreatedAt: l.now(),
	})
	lock.Unlock()
	if err != nil {
		return err
	}

	if l.notifier != nil {
		l.notifier.Invalidate(ctx)
	}
	return nil
}

// Aggregate 返回每个品种(包括零票的品种)的全部投票，品种按注册顺序排列
func (l *Ledger) Aggregate(ctx context.Context) ([]VariantVotes, error) {
	names, err := l.variants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("无法读取品种列表: %w", err)
	}
	votes, err := l.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]VariantVotes, 0, len(names))
	position := make(map[string]int, len(names))
	for _, name := range names {
		position[name] = len(result)
		result = append(result, VariantVotes{Variant: name, Votes: []Vote{}})
	}

	for _, v := range votes {
		i, ok := position[v.Variant]
		if !ok {
			// 品种列表读取之后才注册的品种，追加到末尾
			i = len(result)
			position[v.Variant] = i
			result = append(result, VariantVotes{Variant: v.Variant, Votes: []Vote{}})
		}
		result[i].Votes = append(result[i].Votes, v)
	}
	return result, nil
}

// Export 返回 品种 -> (投票人 -> "+"/"-") 的映射，供机器读取
func (l *Ledger) Export(ctx context.Context) (map[string]map[string]string, error) {
	aggregated, err := l.Aggregate(ctx)
	if err != nil {
		return nil, err
	}

	export := make(map[string]map[string]string, len(aggregated))
	for _, vv := range aggregated {
		signs := make(map[string]string, len(vv.Votes))
		for _, v := range vv.Votes {
			signs[v.Name] = v.Choice.Sign()
		}
		export[vv.Variant] = signs
	}
	return export, nil
}

// Summarize 统计一组投票的赞和踩
func Summarize(votes []Vote) string {
	up, down := 0, 0
	for _, v := range votes {
		switch v.Choice {
		case Upvote:
			up++
		case Downvote:
			down++
		}
	}
	return fmt.Sprintf("+%d / -%d", up, down)
}

// Message 把提交结果转换为返回给用户的提示
func Message(err error) string {
	switch {
	case err == nil:
		return "thanks for voting!"
	case errors.Is(err, ErrDuplicateVote):
		return "no double votes!"
	case errors.Is(err, ErrVariantNotFound):
		return "coffee variant not found!"
	case errors.Is(err, ErrInvalidChoice):
		return "unexpected value for the vote"
	case errors.Is(err, ErrInvalidVoterName):
		return "please enter your name"
	default:
		return "unexpected error"
	}
}

// IsMalformed 判断错误是否属于请求格式问题
func IsMalformed(err error) bool {
	return errors.Is(err, ErrInvalidChoice) || errors.Is(err, ErrInvalidVoterName)
}
