package vote

import (
	"errors"
	"strconv"
	"time"

	"github.com/SlpAus/coffee-vote-backend/internal/variant"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrVariantNotFound 表示投票的品种不存在
	ErrVariantNotFound = errors.New("coffee variant not found")
	// ErrDuplicateVote 表示该投票人(不区分大小写)已对此品种投过票
	ErrDuplicateVote = errors.New("duplicate vote")
	// ErrInvalidChoice 表示投票值不是 0 或 1
	ErrInvalidChoice = errors.New("unexpected value for the vote")
	// ErrInvalidVoterName 表示投票人名称为空
	ErrInvalidVoterName = errors.New("voter name is required")
)

// Choice 定义了投票值的枚举类型
type Choice int

const (
	// Downvote 表示踩
	Downvote Choice = 0
	// Upvote 表示赞
	Upvote Choice = 1
)

// ParseChoice 把请求中的整数字符串解析为投票值
func ParseChoice(raw string) (Choice, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrInvalidChoice
	}
	choice := Choice(n)
	if !choice.Valid() {
		return 0, ErrInvalidChoice
	}
	return choice, nil
}

func (c Choice) Valid() bool {
	return c == Downvote || c == Upvote
}

// Sign 返回导出接口使用的单字符符号
func (c Choice) Sign() string {
	if c == Upvote {
		return "+"
	}
	return "-"
}

// Label 返回页面上展示用的文字
func (c Choice) Label() string {
	switch c {
	case Upvote:
		return "like"
	case Downvote:
		return "dislike"
	default:
		return "unknown"
	}
}

// Vote 是一条不可变的投票记录
type Vote struct {
	Variant   string    `json:"variant"`
	Name      string    `json:"name"`
	Choice    Choice    `json:"vote"`
	CreatedAt time.Time `json:"created_at"`
}

// VoterKey 返回用于查重的投票人名称。
// 只做逐字符的小写映射，不做完整的大小写折叠，所以 "ß" 和 "SS" 是两个不同的投票人。
func VoterKey(name string) string {
	// cases.Caser 不能跨goroutine共享，每次调用创建新的
	return cases.Lower(language.Und).String(name)
}

// Record 定义了数据库中投票记录的数据结构。
// 它只通过 VariantID 引用品种，不维护反向关联。
type Record struct {
	ID uint `gorm:"primarykey"`

	// VariantID 和 VoterKey 组成唯一索引，保证同一品种下的投票人不重复
	VariantID uint           `gorm:"not null;uniqueIndex:idx_votes_variant_voter"`
	Variant   variant.Record `gorm:"foreignKey:VariantID"`
	VoterKey  string         `gorm:"not null;uniqueIndex:idx_votes_variant_voter"`

	// Name 是投票人提交的原始名称
	Name string `gorm:"not null"`

	// Vote 是投票值 (0=踩, 1=赞)
	Vote Choice `gorm:"not null"`

	CreatedAt time.Time
}

func (Record) TableName() string {
	return "votes"
}
