package analysis

import (
	"fmt"
	"time"
)

// Session is the immutable result of one analysis run: the correlation
// matrix, the thresholded graph built from it, and the community partition
// of that graph. All queries are answered against a single session, so a
// reader can never observe a matrix from one run paired with a graph from
// another.
type Session struct {
	Matrix      *CorrelationMatrix
	Graph       *Graph
	Communities [][]string
	Threshold   float64
	Start       time.Time
	End         time.Time
	CreatedAt   time.Time
}

// ConnectedInCommunity returns the other members of the community containing
// symbol whose correlation with it meets the session threshold.
//
// Community membership already required a qualifying edge for most members,
// but the filter is applied explicitly anyway: the detector may group nodes
// without a direct qualifying edge between them. The result order follows
// the community's sorted member order, so it is deterministic for a fixed
// session. A known symbol with no qualifying peers yields an empty (non-nil)
// slice, distinct from the unknown-symbol error.
func (s *Session) ConnectedInCommunity(symbol string) ([]string, error) {
	if !s.Graph.HasNode(symbol) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInstrument, symbol)
	}

	peers := []string{}
	for _, members := range s.Communities {
		if !contains(members, symbol) {
			continue
		}
		for _, other := range members {
			if other == symbol {
				continue
			}
			corr, err := s.Matrix.At(symbol, other)
			if err != nil {
				return nil, err
			}
			// NaN fails this comparison, so undefined correlations
			// never surface as peers
			if corr >= s.Threshold {
				peers = append(peers, other)
			}
		}
		break
	}

	return peers, nil
}

// CorrelationBetween returns the correlation between two symbols from the
// session matrix. Symmetric in its arguments; a == b returns 1.0. Unknown
// symbols yield ErrUnknownInstrument.
func (s *Session) CorrelationBetween(a, b string) (float64, error) {
	return s.Matrix.At(a, b)
}

// CommunityOf returns the community containing symbol, or nil if unknown
func (s *Session) CommunityOf(symbol string) []string {
	for _, members := range s.Communities {
		if contains(members, symbol) {
			out := make([]string, len(members))
			copy(out, members)
			return out
		}
	}
	return nil
}

func contains(members []string, symbol string) bool {
	for _, m := range members {
		if m == symbol {
			return true
		}
	}
	return false
}
