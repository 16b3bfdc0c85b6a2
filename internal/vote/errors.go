package vote

import "errors"

var (
	// ErrAlreadyVoted 表示该选民在本场选举已有提交记录。
	// 一人一票：一旦存在提交事件，后续提交全部整体拒绝，不存在补投。
	ErrAlreadyVoted = errors.New("选民已经投过票")

	// ErrElectionNotOpen 表示当前没有接受选票的选举
	ErrElectionNotOpen = errors.New("选举当前不接受选票")

	// ErrTransactionFailure 表示账本写入事务失败（死锁、锁超时、连接问题）。
	// 事务已整体回滚，客户端可以安全重试。
	ErrTransactionFailure = errors.New("选票写入失败，请稍后重试")
)
