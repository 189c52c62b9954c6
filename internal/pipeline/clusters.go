package pipeline

import (
	"fmt"
	"sort"

	"github.com/theirongolddev/spendvibe/internal/cluster"
	"github.com/theirongolddev/spendvibe/internal/model"
)

// clusterTransactions standardizes the features, fits k = min(maxK, n)
// clusters and writes each label back onto its transaction.
func clusterTransactions(txns []model.Transaction, fm *FeatureMatrix, c cluster.Clusterer, maxK int) (int, error) {
	k := min(maxK, len(txns))
	res, err := c.Fit(cluster.Standardize(fm.Rows), k)
	if err != nil {
		return 0, fmt.Errorf("clustering %d transactions: %w", len(txns), err)
	}
	if len(res.Labels) != len(txns) {
		return 0, fmt.Errorf("clusterer returned %d labels for %d transactions", len(res.Labels), len(txns))
	}
	for i := range txns {
		txns[i].Cluster = res.Labels[i]
	}
	return k, nil
}

// summarizeClusters profiles and names every non-empty cluster, ordered
// by label.
func summarizeClusters(txns []model.Transaction, labeler cluster.Labeler) []model.ClusterSummary {
	byLabel := make(map[int][]model.Transaction)
	for _, t := range txns {
		byLabel[t.Cluster] = append(byLabel[t.Cluster], t)
	}

	labels := make([]int, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	out := make([]model.ClusterSummary, 0, len(labels))
	for _, l := range labels {
		members := byLabel[l]

		parentCounts := make(map[string]int)
		parentKinds := make(map[string]model.ParentKind)
		periodCounts := make(map[string]int)
		periodByName := make(map[string]model.TimePeriod)
		catCounts := make(map[string]int)
		var total float64
		for _, t := range members {
			total += t.Amount
			parentCounts[t.ParentName]++
			parentKinds[t.ParentName] = t.Parent
			periodCounts[t.Period.String()]++
			periodByName[t.Period.String()] = t.Period
			catCounts[t.CategoryName]++
		}
		avg := total / float64(len(members))

		topParent := rankByCount(parentCounts)[0]
		topPeriod := periodByName[rankByCount(periodCounts)[0]]

		vibe := labeler.Vibe(cluster.Profile{
			TopParent:     topParent,
			TopParentKind: parentKinds[topParent],
			TopPeriod:     topPeriod,
			AvgAmount:     avg,
		})

		cats := rankByCount(catCounts)
		if len(cats) > 3 {
			cats = cats[:3]
		}

		out = append(out, model.ClusterSummary{
			Label:             l,
			Vibe:              vibe,
			AvgSpend:          round2(avg),
			TotalTransactions: len(members),
			TopCategories:     cats,
		})
	}
	return out
}

// rankByCount orders keys by descending count, ties by name.
func rankByCount(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
