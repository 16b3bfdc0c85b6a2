package position

// ID 是职位的封闭枚举标识。未知职位一律拒绝。
type ID string

const (
	President             ID = "president"
	InternalVicePresident ID = "internal_vice_president"
	ExternalVicePresident ID = "external_vice_president"
	Secretary             ID = "secretary"
	Treasurer             ID = "treasurer"
	Auditor               ID = "auditor"
	Senator               ID = "senator"
)

// SenatorCap 是senator职位在一张选票中允许的最大勾选数
const SenatorCap = 8

// all 按选票上的固定顺序排列所有职位
var all = []ID{
	President,
	InternalVicePresident,
	ExternalVicePresident,
	Secretary,
	Treasurer,
	Auditor,
	Senator,
}

// singleWinner 是六个单席位职位，选民在每个职位上最多勾选一名候选人
var singleWinner = []ID{
	President,
	InternalVicePresident,
	ExternalVicePresident,
	Secretary,
	Treasurer,
	Auditor,
}

// All 返回选票上的全部职位，顺序固定。
func All() []ID {
	return all
}

// SingleWinner 返回所有单席位职位，顺序固定。
func SingleWinner() []ID {
	return singleWinner
}

// IsValid 判断一个职位标识是否属于封闭集合。
func IsValid(id ID) bool {
	for _, p := range all {
		if p == id {
			return true
		}
	}
	return false
}

// IsMultiWinner 判断一个职位是否允许多选。目前只有senator。
func IsMultiWinner(id ID) bool {
	return id == Senator
}

// SeatCount 返回一个职位产生的席位数，用于结果报告。
func SeatCount(id ID) int {
	if id == Senator {
		return SenatorCap
	}
	return 1
}
