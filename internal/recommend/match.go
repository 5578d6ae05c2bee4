package recommend

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"encore/internal/models"
)

// matchThreshold is the minimum similarity for a search hit to count as
// the named artist. Below this, treat the name as unmatched rather than
// returning an arbitrary result.
const matchThreshold = 0.75

// bestArtistMatch picks the candidate whose name is most similar to the
// query, using Jaro-Winkler so small spelling differences still match.
func bestArtistMatch(query string, candidates []models.Artist) (models.Artist, bool) {
	metric := metrics.NewJaroWinkler()
	query = strings.ToLower(strings.TrimSpace(query))

	var best models.Artist
	bestScore := 0.0
	for _, candidate := range candidates {
		score := strutil.Similarity(query, strings.ToLower(candidate.Name), metric)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}

	if bestScore < matchThreshold {
		return models.Artist{}, false
	}
	return best, true
}
