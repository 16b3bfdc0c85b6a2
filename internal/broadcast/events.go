package broadcast

import "time"

// 推送使用的Redis Pub/Sub频道。
// 计票更新和选举状态变更走不同的频道，仪表盘可以分别订阅。
const (
	TallyChannel  = "tally:updates"
	StatusChannel = "election:status"
)

// TallyEvent 是一次成功提交后，某个候选人的最新票数。
// 同一候选人的Count在一个选举周期内单调不减（选票不会被撤回）。
type TallyEvent struct {
	ElectionID  uint      `json:"election_id"`
	CandidateID string    `json:"candidate_id"`
	Position    string    `json:"position"`
	Count       int64     `json:"count"`
	At          time.Time `json:"at"`
}

// StatusEvent 是一次选举状态变更。
type StatusEvent struct {
	ElectionID uint      `json:"election_id"`
	Status     string    `json:"status"`
	At         time.Time `json:"at"`
}
