package pipeline

import "github.com/jonathan/candidate-ranker/internal/types"

// Page returns the window [offset, offset+limit) of the ranked candidates.
// limit <= 0 means no limit. The summary still describes the whole filtered set.
func Page(rs types.ResultSet, limit, offset int) types.ResultSet {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rs.Candidates) {
		rs.Candidates = []types.EnrichedCandidate{}
		return rs
	}
	end := len(rs.Candidates)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	rs.Candidates = rs.Candidates[offset:end]
	return rs
}
