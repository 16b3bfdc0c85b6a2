package election

import (
	"fmt"
	"time"

	"github.com/SlpAus/usg-voting-backend/pkg/lifecycle"
)

const watchInterval = 15 * time.Second

// StartExpiryWatcher 启动后台巡查：到点的Started选举由服务器自行关闭，
// 不依赖客户端倒计时是否真的发来了关闭请求。
func StartExpiryWatcher(handle *lifecycle.Handle) {
	go runExpiryWatcher(handle)
}

func runExpiryWatcher(handle *lifecycle.Handle) {
	defer handle.Close()
	fmt.Println("选举到期巡查器已启动。")

	for {
		if err := handle.Sleep(watchInterval); err != nil {
			fmt.Println("选举到期巡查器已退出。")
			return
		}
		checkOnce(time.Now())
	}
}

// checkOnce 检查当前选举是否已过截止时间，是则关闭。
func checkOnce(now time.Time) {
	e, err := Current()
	if err != nil {
		return // 没有当前选举，无事可做
	}
	if e.Status != StatusStarted || e.EndTime == nil || now.Before(*e.EndTime) {
		return
	}

	if _, err := CloseIfExpired(e.ID, now); err != nil {
		fmt.Printf("警告: 自动关闭到期选举 %d 失败: %v\n", e.ID, err)
	} else {
		fmt.Printf("选举 %d 已过截止时间，已自动关闭。\n", e.ID)
	}
}
