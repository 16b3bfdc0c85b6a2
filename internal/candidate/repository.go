package candidate

import (
	"fmt"
	"sort"
	"sync"

	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
	"github.com/SlpAus/usg-voting-backend/internal/position"
)

// Info 持有候选人的静态数据，在程序启动时加载到内存中
type Info struct {
	Name       string
	Party      string
	Photo      string
	Position   position.ID
	ElectionID uint
}

// repository 是candidate模块的中央数据仓库。
// 选票校验的热路径全部走内存，不触碰数据库。
type repository struct {
	idToInfo map[string]Info
	// byPosition 按 (electionID, position) 维护候选人ID列表，按ID升序
	byPosition map[uint]map[position.ID][]string
	rwLock     sync.RWMutex
}

var globalRepository = &repository{
	idToInfo:   make(map[string]Info),
	byPosition: make(map[uint]map[position.ID][]string),
}

// InitializeRepository 从数据库加载全部候选人，初始化内存仓库。
// 候选人由外部的管理CRUD协作方维护，发生变更后调用方应重新加载。
func InitializeRepository() error {
	var candidatesFromDB []Candidate
	if err := database.DB.Order("candidate_id asc").Find(&candidatesFromDB).Error; err != nil {
		return fmt.Errorf("无法从数据库加载候选人数据: %w", err)
	}

	idToInfo := make(map[string]Info, len(candidatesFromDB))
	byPosition := make(map[uint]map[position.ID][]string)

	for _, c := range candidatesFromDB {
		pos := position.ID(c.Position)
		if !position.IsValid(pos) {
			fmt.Printf("警告: 候选人 %s 的职位 %s 不在封闭集合内，已跳过。\n", c.CandidateID, c.Position)
			continue
		}
		idToInfo[c.CandidateID] = Info{
			Name:       c.Name,
			Party:      c.Party,
			Photo:      c.Photo,
			Position:   pos,
			ElectionID: c.ElectionID,
		}
		if byPosition[c.ElectionID] == nil {
			byPosition[c.ElectionID] = make(map[position.ID][]string)
		}
		byPosition[c.ElectionID][pos] = append(byPosition[c.ElectionID][pos], c.CandidateID)
	}

	// 列表按候选人ID升序，与计票的平局裁定顺序保持一致
	for _, positions := range byPosition {
		for _, ids := range positions {
			sort.Strings(ids)
		}
	}

	globalRepository.rwLock.Lock()
	globalRepository.idToInfo = idToInfo
	globalRepository.byPosition = byPosition
	globalRepository.rwLock.Unlock()

	fmt.Printf("候选人仓库 (Repository) 初始化成功，加载了 %d 名候选人。\n", len(idToInfo))
	return nil
}

// GetInfo 返回候选人的静态信息。
func GetInfo(candidateID string) (Info, bool) {
	globalRepository.rwLock.RLock()
	defer globalRepository.rwLock.RUnlock()
	info, ok := globalRepository.idToInfo[candidateID]
	return info, ok
}

// LookupForElection 返回一个限定在指定选举内的候选人查找函数，
// 供选票校验使用。
func LookupForElection(electionID uint) func(candidateID string) (position.ID, bool) {
	return func(candidateID string) (position.ID, bool) {
		globalRepository.rwLock.RLock()
		defer globalRepository.rwLock.RUnlock()
		info, ok := globalRepository.idToInfo[candidateID]
		if !ok || info.ElectionID != electionID {
			return "", false
		}
		return info.Position, true
	}
}

// IDsForPosition 返回一场选举中某职位的全部候选人ID（升序）。
func IDsForPosition(electionID uint, pos position.ID) []string {
	globalRepository.rwLock.RLock()
	defer globalRepository.rwLock.RUnlock()
	positions, ok := globalRepository.byPosition[electionID]
	if !ok {
		return nil
	}
	ids := positions[pos]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// AllIDsForElection 返回一场选举的全部候选人ID（升序）。
func AllIDsForElection(electionID uint) []string {
	var out []string
	for _, pos := range position.All() {
		out = append(out, IDsForPosition(electionID, pos)...)
	}
	sort.Strings(out)
	return out
}

// CountForElection 返回一场选举的候选人总数。
func CountForElection(electionID uint) int {
	globalRepository.rwLock.RLock()
	defer globalRepository.rwLock.RUnlock()
	total := 0
	for _, ids := range globalRepository.byPosition[electionID] {
		total += len(ids)
	}
	return total
}
