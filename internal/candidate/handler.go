package candidate

import (
	"net/http"
	"strconv"

	"github.com/SlpAus/usg-voting-backend/internal/position"
	"github.com/gin-gonic/gin"
)

// candidateDTO 是候选人列表API的响应单元
type candidateDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Party    string `json:"party"`
	Photo    string `json:"photo"`
	Position string `json:"position"`
}

// GetCandidates 返回一场选举的候选人名单，可按职位过滤。
// GET /api/candidates?election_id=1&position=senator
func GetCandidates(c *gin.Context) {
	electionID64, err := strconv.ParseUint(c.Query("election_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "election_id 参数无效"})
		return
	}
	electionID := uint(electionID64)

	var ids []string
	if posParam := c.Query("position"); posParam != "" {
		pos := position.ID(posParam)
		if !position.IsValid(pos) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "未知的职位: " + posParam})
			return
		}
		ids = IDsForPosition(electionID, pos)
	} else {
		ids = AllIDsForElection(electionID)
	}

	result := make([]candidateDTO, 0, len(ids))
	for _, id := range ids {
		info, ok := GetInfo(id)
		if !ok {
			continue
		}
		result = append(result, candidateDTO{
			ID:       id,
			Name:     info.Name,
			Party:    info.Party,
			Photo:    info.Photo,
			Position: string(info.Position),
		})
	}

	c.JSON(http.StatusOK, gin.H{"candidates": result})
}
