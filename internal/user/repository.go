package user

// --- Redis 键名常量 ---

const (
	// EligibleVotersKey 是一个 Redis Set 的键，存储所有具备投票资格的
	// 选民UUID，作为投票入口资格检查的快速路径。
	// 数据库是事实来源，这个Set可随时从数据库整体重建。
	EligibleVotersKey = "voter:eligible"
)
