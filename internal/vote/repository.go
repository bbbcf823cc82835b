package vote

import "context"

// Repository 是投票账本的持久化端口，只支持追加和读取。
// Append 必须自行保证 (品种, VoterKey) 的唯一性，冲突时返回 ErrDuplicateVote。
type Repository interface {
	Append(ctx context.Context, v Vote) error
	List(ctx context.Context) ([]Vote, error)
}
