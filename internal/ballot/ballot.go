package ballot

import (
	"fmt"

	"github.com/SlpAus/usg-voting-backend/internal/position"
)

// Ballot 定义了前端提交选票时，请求体的JSON结构。
// 六个单席位职位各持有零或一个候选人ID，senator持有0到8个候选人ID。
// 全部留空的选票是合法的（全弃权），但同样消耗一人一票的额度。
type Ballot struct {
	President             string   `json:"president"`
	InternalVicePresident string   `json:"internal_vice_president"`
	ExternalVicePresident string   `json:"external_vice_president"`
	Secretary             string   `json:"secretary"`
	Treasurer             string   `json:"treasurer"`
	Auditor               string   `json:"auditor"`
	Senator               []string `json:"senator"`
}

// Selection 是规范化后的一条勾选记录
type Selection struct {
	Position    position.ID
	CandidateID string
}

// CandidateLookup 根据候选人ID返回其参选的职位。
// 第二个返回值为false表示候选人不存在（或不属于当前选举）。
type CandidateLookup func(candidateID string) (position.ID, bool)

// 校验失败的原因分类，handler据此映射错误码
const (
	CodeMalformedBallot  = "MALFORMED_BALLOT"
	CodeInvalidCandidate = "INVALID_CANDIDATE"
)

// ValidationError 描述一次校验失败，并指出出错的字段。
type ValidationError struct {
	Code   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Field, e.Reason)
}

// singleEntries 按固定顺序展开六个单席位字段
func (b *Ballot) singleEntries() []struct {
	pos position.ID
	id  string
} {
	return []struct {
		pos position.ID
		id  string
	}{
		{position.President, b.President},
		{position.InternalVicePresident, b.InternalVicePresident},
		{position.ExternalVicePresident, b.ExternalVicePresident},
		{position.Secretary, b.Secretary},
		{position.Treasurer, b.Treasurer},
		{position.Auditor, b.Auditor},
	}
}

// Normalize 校验选票形状并输出规范化的勾选列表。
// 勾选顺序与选票上的职位顺序一致，senator内部保持提交顺序。
func (b *Ballot) Normalize(lookup CandidateLookup) ([]Selection, error) {
	var selections []Selection

	// 1. 六个单席位职位：零或一个候选人
	for _, entry := range b.singleEntries() {
		if entry.id == "" {
			continue // 弃权
		}
		pos, ok := lookup(entry.id)
		if !ok {
			return nil, &ValidationError{
				Code:   CodeInvalidCandidate,
				Field:  string(entry.pos),
				Reason: "候选人不存在: " + entry.id,
			}
		}
		if pos != entry.pos {
			return nil, &ValidationError{
				Code:   CodeInvalidCandidate,
				Field:  string(entry.pos),
				Reason: fmt.Sprintf("候选人 %s 参选的职位是 %s", entry.id, pos),
			}
		}
		selections = append(selections, Selection{Position: entry.pos, CandidateID: entry.id})
	}

	// 2. senator：0到8个候选人，不允许重复勾选
	if len(b.Senator) > position.SenatorCap {
		return nil, &ValidationError{
			Code:   CodeMalformedBallot,
			Field:  string(position.Senator),
			Reason: fmt.Sprintf("最多允许勾选 %d 名senator候选人", position.SenatorCap),
		}
	}
	seen := make(map[string]bool, len(b.Senator))
	for _, id := range b.Senator {
		if id == "" {
			return nil, &ValidationError{
				Code:   CodeMalformedBallot,
				Field:  string(position.Senator),
				Reason: "候选人ID不能为空",
			}
		}
		if seen[id] {
			return nil, &ValidationError{
				Code:   CodeMalformedBallot,
				Field:  string(position.Senator),
				Reason: "重复勾选候选人: " + id,
			}
		}
		seen[id] = true

		pos, ok := lookup(id)
		if !ok {
			return nil, &ValidationError{
				Code:   CodeInvalidCandidate,
				Field:  string(position.Senator),
				Reason: "候选人不存在: " + id,
			}
		}
		if pos != position.Senator {
			return nil, &ValidationError{
				Code:   CodeInvalidCandidate,
				Field:  string(position.Senator),
				Reason: fmt.Sprintf("候选人 %s 参选的职位是 %s", id, pos),
			}
		}
		selections = append(selections, Selection{Position: position.Senator, CandidateID: id})
	}

	return selections, nil
}
