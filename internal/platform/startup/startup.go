package startup

import (
	"fmt"

	"github.com/SlpAus/usg-voting-backend/internal/candidate"
	"github.com/SlpAus/usg-voting-backend/internal/election"
	"github.com/SlpAus/usg-voting-backend/internal/platform/metadata"
	"github.com/SlpAus/usg-voting-backend/internal/roster"
	"github.com/SlpAus/usg-voting-backend/internal/tally"
	"github.com/SlpAus/usg-voting-backend/internal/user"
	"github.com/SlpAus/usg-voting-backend/internal/vote"
)

// InitializeApplication 是应用首次启动时执行的总入口。
// 顺序有讲究：先迁移基础表，再迁移业务表，最后从账本预热缓存。
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := metadata.PrimeDB(); err != nil {
		return err
	}
	if err := user.PrimeCachedDB(); err != nil {
		return err
	}
	if err := roster.PrimeDB(); err != nil {
		return err
	}
	if err := election.PrimeDB(); err != nil {
		return err
	}
	if err := candidate.PrimeCachedDB(); err != nil {
		return err
	}
	if err := vote.PrimeDB(); err != nil {
		return err
	}
	if err := tally.WarmupCache(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 在运行时热重建全部Redis缓存。
// 所有缓存都可以从数据库和账本完整推导，重建是无损的。
func RebuildCache() error {
	fmt.Println("开始缓存热重建...")

	if err := candidate.InitializeRepository(); err != nil {
		return err
	}
	if err := user.WarmupCache(); err != nil {
		return err
	}
	if err := tally.WarmupCache(); err != nil {
		return err
	}

	fmt.Println("缓存热重建完成。")
	return nil
}
