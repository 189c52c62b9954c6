package cluster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/spendvibe/internal/model"
)

func blobs() [][]float64 {
	return [][]float64{
		{0, 0}, {0.1, 0.2}, {-0.1, 0.1},
		{10, 10}, {10.2, 9.9}, {9.8, 10.1},
		{-10, 10}, {-9.9, 10.2}, {-10.1, 9.8},
	}
}

func TestKMeans_SeparatesBlobs(t *testing.T) {
	res, err := NewKMeans(42).Fit(blobs(), 3)
	require.NoError(t, err)
	require.Len(t, res.Labels, 9)

	for g := 0; g < 3; g++ {
		first := res.Labels[g*3]
		assert.Equal(t, first, res.Labels[g*3+1])
		assert.Equal(t, first, res.Labels[g*3+2])
	}
	assert.NotEqual(t, res.Labels[0], res.Labels[3])
	assert.NotEqual(t, res.Labels[0], res.Labels[6])
	assert.NotEqual(t, res.Labels[3], res.Labels[6])
	assert.Less(t, res.Inertia, 1.0)
}

func TestKMeans_Deterministic(t *testing.T) {
	rows := blobs()
	a, err := NewKMeans(7).Fit(rows, 4)
	require.NoError(t, err)
	b, err := NewKMeans(7).Fit(rows, 4)
	require.NoError(t, err)

	assert.Equal(t, a.Labels, b.Labels)
	assert.Equal(t, a.Inertia, b.Inertia)
}

func TestKMeans_KEqualsN(t *testing.T) {
	rows := [][]float64{{0}, {5}, {9}}
	res, err := NewKMeans(1).Fit(rows, 3)
	require.NoError(t, err)

	seen := map[int]bool{}
	for _, l := range res.Labels {
		seen[l] = true
	}
	assert.Len(t, seen, 3)
	assert.InDelta(t, 0, res.Inertia, 1e-12)
}

func TestKMeans_IdenticalRows(t *testing.T) {
	rows := [][]float64{{1, 1}, {1, 1}, {1, 1}}
	res, err := NewKMeans(3).Fit(rows, 3)
	require.NoError(t, err)
	assert.Len(t, res.Labels, 3)
	assert.InDelta(t, 0, res.Inertia, 1e-12)
}

func TestKMeans_InvalidInput(t *testing.T) {
	km := NewKMeans(1)

	_, err := km.Fit(nil, 1)
	require.Error(t, err)

	_, err = km.Fit([][]float64{{1}, {2}}, 3)
	require.Error(t, err)

	_, err = km.Fit([][]float64{{1}, {2, 3}}, 1)
	require.Error(t, err)
}

func TestStandardize(t *testing.T) {
	rows := [][]float64{{1, 5, math.NaN()}, {3, 5, 1}, {5, 5, 2}}
	out := Standardize(rows)

	require.Len(t, out, 3)
	var mean, sq float64
	for _, r := range out {
		mean += r[0]
		sq += r[0] * r[0]
		assert.Equal(t, 0.0, r[1], "constant column scales to zero")
		assert.False(t, math.IsNaN(r[2]))
	}
	assert.InDelta(t, 0, mean/3, 1e-12)
	assert.InDelta(t, 1, sq/3, 1e-12)
	assert.Nil(t, Standardize(nil))
}

func TestLabeler_RulePriority(t *testing.T) {
	l := Labeler{ImpulseAmount: 500}

	cases := []struct {
		name string
		p    Profile
		want string
	}{
		{"night beats shopping", Profile{TopParent: "SHOPPING", TopParentKind: model.ParentShopping, TopPeriod: model.NightLife, AvgAmount: 900}, VibeNightOwl},
		{"breakfast", Profile{TopParent: "LIVING", TopParentKind: model.ParentLiving, TopPeriod: model.Breakfast}, VibeEarlyRiser},
		{"impulse", Profile{TopParent: "SHOPPING", TopParentKind: model.ParentShopping, TopPeriod: model.Dinner, AvgAmount: 501}, VibeImpulse},
		{"cheap shopping falls through", Profile{TopParent: "SHOPPING", TopParentKind: model.ParentShopping, TopPeriod: model.Lunch, AvgAmount: 500}, "SHOPPING (Lunch)"},
		{"fixed", Profile{TopParent: "FIXED", TopParentKind: model.ParentFixed, TopPeriod: model.WorkOther}, VibeFixedOverhead},
		{"entertainment", Profile{TopParent: "ENT", TopParentKind: model.ParentEntertainment, TopPeriod: model.Dinner}, VibeEntertainment},
		{"generic", Profile{TopParent: "Other", TopParentKind: model.ParentOther, TopPeriod: model.WorkOther}, "Other (Work/Other)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, l.Vibe(tc.p))
		})
	}
}
