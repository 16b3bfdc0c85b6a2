package tally

import (
	"fmt"
	"strconv"
	"time"

	"github.com/SlpAus/usg-voting-backend/internal/broadcast"
	"github.com/SlpAus/usg-voting-backend/internal/candidate"
	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
	"github.com/SlpAus/usg-voting-backend/internal/platform/metadata"
	"github.com/SlpAus/usg-voting-backend/internal/position"
	"github.com/redis/go-redis/v9"
)

// --- Redis 键名 ---

const (
	// CountsKey 是一个Redis Hash，Field为候选人ID，Value为该候选人的票数。
	// 它是账本计数的只读镜像，失效策略与账本提交严格绑定：
	// 只有提交成功后的重算会写入它。
	CountsKey = "tally:counts"
)

// rankingKey 返回一场选举中某职位的排名Sorted Set键名。
// Score为票数，Member为候选人ID。
func rankingKey(electionID uint, pos position.ID) string {
	return fmt.Sprintf("tally:ranking:%d:%s", electionID, pos)
}

// RefreshCandidates 在一次提交成功后，从账本重算一组候选人的票数并
// 写入缓存。返回可直接交给广播器的事件列表。
// 缓存写入失败只记录日志——账本是唯一事实来源，缓存可随时整体重建。
func RefreshCandidates(electionID uint, candidateIDs []string) ([]broadcast.TallyEvent, error) {
	counts, err := CountsForCandidates(candidateIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	events := make([]broadcast.TallyEvent, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		info, ok := candidate.GetInfo(id)
		if !ok {
			continue
		}
		events = append(events, broadcast.TallyEvent{
			ElectionID:  electionID,
			CandidateID: id,
			Position:    string(info.Position),
			Count:       counts[id],
			At:          now,
		})
	}

	if database.IsRedisHealthy() {
		pipe := database.RDB.Pipeline()
		for _, ev := range events {
			pipe.HSet(database.Ctx, CountsKey, ev.CandidateID, ev.Count)
			pipe.ZAdd(database.Ctx, rankingKey(electionID, position.ID(ev.Position)), redis.Z{
				Score:  float64(ev.Count),
				Member: ev.CandidateID,
			})
		}
		if _, err := pipe.Exec(database.Ctx); err != nil {
			fmt.Printf("警告: 刷新计票缓存失败（账本已提交，缓存将在下次重建时追平）: %v\n", err)
		}
	}

	return events, nil
}

// WarmupCache 从账本整体重建计票缓存。
// 在启动时和Redis重启恢复后调用。
func WarmupCache() error {
	if !database.IsRedisHealthy() {
		fmt.Println("Redis不可用，跳过计票缓存预热。")
		return nil
	}

	// 1. 找出候选人表中出现过的所有选举
	var electionIDs []uint
	if err := database.DB.Model(&candidate.Candidate{}).Distinct("election_id").Pluck("election_id", &electionIDs).Error; err != nil {
		return fmt.Errorf("无法枚举选举ID: %w", err)
	}

	// 2. 擦除旧缓存
	pipe := database.RDB.Pipeline()
	pipe.Del(database.Ctx, CountsKey)
	for _, electionID := range electionIDs {
		for _, pos := range position.All() {
			pipe.Del(database.Ctx, rankingKey(electionID, pos))
		}
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("擦除旧计票缓存失败: %w", err)
	}

	// 3. 按选举重算并写入，零票候选人也写入，保证排名完整
	total := 0
	for _, electionID := range electionIDs {
		counts, err := countsForElection(electionID)
		if err != nil {
			return err
		}

		pipe := database.RDB.Pipeline()
		for _, pos := range position.All() {
			key := rankingKey(electionID, pos)
			for _, id := range candidate.IDsForPosition(electionID, pos) {
				count := counts[id]
				pipe.HSet(database.Ctx, CountsKey, id, count)
				pipe.ZAdd(database.Ctx, key, redis.Z{Score: float64(count), Member: id})
				total++
			}
		}
		if _, err := pipe.Exec(database.Ctx); err != nil {
			return fmt.Errorf("写入选举 %d 的计票缓存失败: %w", electionID, err)
		}
	}

	// 4. 记录重建检查点
	maxID, err := MaxVoteRecordID()
	if err == nil {
		if err := metadata.SetLastTallyRebuildVoteID(database.DB, maxID); err != nil {
			fmt.Printf("警告: 无法记录计票缓存重建检查点: %v\n", err)
		}
	}

	fmt.Printf("计票缓存预热完成，共写入 %d 个候选人条目。\n", total)
	return nil
}

// CachedResultsForPosition 从缓存读取一场选举中某职位的排名。
// 第二个返回值为false表示缓存不可用，调用方应回落到账本查询。
func CachedResultsForPosition(electionID uint, pos position.ID) ([]CandidateCount, bool) {
	if !database.IsRedisHealthy() {
		return nil, false
	}

	zs, err := database.RDB.ZRangeWithScores(database.Ctx, rankingKey(electionID, pos), 0, -1).Result()
	if err != nil || len(zs) == 0 {
		return nil, false
	}

	results := make([]CandidateCount, 0, len(zs))
	for _, z := range zs {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		info, _ := candidate.GetInfo(id)
		results = append(results, CandidateCount{
			CandidateID: id,
			Name:        info.Name,
			Position:    pos,
			Count:       int64(z.Score),
		})
	}
	// Redis按分数升序返回，且同分时按成员字典序；
	// 统一在这里套用确定性的排序规则
	sortCounts(results)
	return results, true
}

// CachedCountFor 从缓存读取单个候选人的票数。
func CachedCountFor(candidateID string) (int64, bool) {
	if !database.IsRedisHealthy() {
		return 0, false
	}
	val, err := database.RDB.HGet(database.Ctx, CountsKey, candidateID).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}
