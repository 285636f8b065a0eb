// Package entity 定义领域实体
package entity

// Platform 目标社交平台
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformFacebook  Platform = "facebook"
)

// AllPlatforms 全部支持的平台，顺序固定
var AllPlatforms = []Platform{
	PlatformTwitter,
	PlatformInstagram,
	PlatformLinkedIn,
	PlatformFacebook,
}

// IsValid 检查平台标识是否合法
func (p Platform) IsValid() bool {
	switch p {
	case PlatformTwitter, PlatformInstagram, PlatformLinkedIn, PlatformFacebook:
		return true
	default:
		return false
	}
}

// PlatformConstraint 平台发布约束，进程生命周期内不可变
type PlatformConstraint struct {
	MaxLength        int  `json:"max_length"`
	HashtagLimit     int  `json:"hashtag_limit"`
	ImageSupported   bool `json:"image_supported"`
	MinContentRunes  int  `json:"min_content_runes"`
	OptimalMinLength int  `json:"optimal_min_length"`
	OptimalMaxLength int  `json:"optimal_max_length"`
}

// 平台约束表。Optimal 取各平台的经验值；
// 内容下限只有 twitter（非空）和 linkedin（>=10）有要求。
var platformConstraints = map[Platform]PlatformConstraint{
	PlatformTwitter: {
		MaxLength:        280,
		HashtagLimit:     5,
		ImageSupported:   true,
		MinContentRunes:  1,
		OptimalMinLength: 70,
		OptimalMaxLength: 200,
	},
	PlatformInstagram: {
		MaxLength:        2200,
		HashtagLimit:     30,
		ImageSupported:   true,
		MinContentRunes:  0,
		OptimalMinLength: 125,
		OptimalMaxLength: 500,
	},
	PlatformLinkedIn: {
		MaxLength:        3000,
		HashtagLimit:     5,
		ImageSupported:   true,
		MinContentRunes:  10,
		OptimalMinLength: 150,
		OptimalMaxLength: 600,
	},
	PlatformFacebook: {
		MaxLength:        63206,
		HashtagLimit:     10,
		ImageSupported:   true,
		MinContentRunes:  0,
		OptimalMinLength: 40,
		OptimalMaxLength: 300,
	},
}

// ConstraintFor 返回平台约束
func ConstraintFor(p Platform) (PlatformConstraint, bool) {
	c, ok := platformConstraints[p]
	return c, ok
}
