package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFuser() *Fuser {
	return NewFuser(DefaultConfig(), DefaultNormalizer())
}

func det(source Source, class string, conf float64, box Box) RawDetection {
	return RawDetection{Source: source, ClassName: class, ClassID: -1, Confidence: conf, Box: box}
}

func fuzzyDet(source Source, class string, conf float64, box Box, fuzzy float64) RawDetection {
	d := det(source, class, conf, box)
	d.FuzzyScore = &fuzzy
	return d
}

func TestFuse_Empty(t *testing.T) {
	merged, err := newTestFuser().Fuse(nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, merged)
	assert.NotNil(t, merged)
}

func TestFuse_SingleSourceNoOverlap(t *testing.T) {
	dets := []RawDetection{
		det(SourceObjects, "door", 0.9, Box{0, 0, 10, 10}),
		det(SourceObjects, "window", 0.8, Box{100, 100, 120, 120}),
		det(SourceObjects, "wall", 0.7, Box{200, 0, 300, 10}),
	}

	merged, err := newTestFuser().Fuse(dets)
	require.NoError(t, err)
	require.Len(t, merged, 3)
	for _, m := range merged {
		assert.Equal(t, 1, m.NumModels)
		assert.Len(t, m.Sources, 1)
		assert.Len(t, m.SourceConfidences, 1)
	}
}

func TestFuse_TwoSourcesMerge(t *testing.T) {
	objects := []RawDetection{det(SourceObjects, "door", 0.90, Box{100, 100, 200, 200})}
	regions := []RawDetection{det(SourceRegions, "door", 0.80, Box{105, 102, 198, 199})}

	merged, err := newTestFuser().Fuse(objects, regions)
	require.NoError(t, err)
	require.Len(t, merged, 1)

	m := merged[0]
	assert.Equal(t, "Door", m.ClassName)
	assert.Equal(t, []Source{SourceObjects, SourceRegions}, m.Sources)
	assert.InDelta(t, 0.85, m.Confidence, 1e-12)
	// Seed box comes from the higher weighted confidence, not an average.
	assert.Equal(t, Box{100, 100, 200, 200}, m.Box)
	assert.Equal(t, 2, m.NumModels)
	assert.Equal(t, 0.90, m.SourceConfidences[SourceObjects])
	assert.Equal(t, 0.80, m.SourceConfidences[SourceRegions])
}

func TestFuse_ClassMismatchSuppressesMerge(t *testing.T) {
	// Identical geometry, different classes: IoU is 1.0 but the clusters
	// must stay apart.
	objects := []RawDetection{det(SourceObjects, "wall", 0.9, Box{0, 0, 50, 10})}
	regions := []RawDetection{det(SourceRegions, "window", 0.9, Box{0, 0, 50, 10})}

	merged, err := newTestFuser().Fuse(objects, regions)
	require.NoError(t, err)
	assert.Len(t, merged, 2)
}

func TestFuse_BelowThresholdStaysSeparate(t *testing.T) {
	objects := []RawDetection{det(SourceObjects, "door", 0.9, Box{0, 0, 10, 10})}
	regions := []RawDetection{det(SourceRegions, "door", 0.8, Box{8, 8, 18, 18})}

	// IoU of these is 4/196, well under 0.3.
	merged, err := newTestFuser().Fuse(objects, regions)
	require.NoError(t, err)
	assert.Len(t, merged, 2)
}

func TestFuse_ThresholdIsStrict(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IoUThreshold = 1.0
	fuser := NewFuser(cfg, DefaultNormalizer())

	// IoU exactly 1.0 does not exceed a threshold of 1.0.
	same := Box{0, 0, 10, 10}
	merged, err := fuser.Fuse(
		[]RawDetection{det(SourceObjects, "door", 0.9, same)},
		[]RawDetection{det(SourceRegions, "door", 0.8, same)},
	)
	require.NoError(t, err)
	assert.Len(t, merged, 2)
}

func TestFuse_SynonymClassesMerge(t *testing.T) {
	objects := []RawDetection{det(SourceObjects, "couch", 0.9, Box{10, 10, 60, 40})}
	regions := []RawDetection{det(SourceRegions, "Sofa", 0.7, Box{12, 11, 58, 39})}

	merged, err := newTestFuser().Fuse(objects, regions)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "Sofa", merged[0].ClassName)
}

func TestFuse_SameSourceNeverMergesTwice(t *testing.T) {
	// Two overlapping same-class boxes from one source: the second must not
	// be absorbed into the first cluster, it seeds its own.
	objects := []RawDetection{
		det(SourceObjects, "door", 0.9, Box{0, 0, 100, 100}),
		det(SourceObjects, "door", 0.8, Box{5, 5, 95, 95}),
	}

	merged, err := newTestFuser().Fuse(objects)
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, 1, merged[0].NumModels)
	assert.Equal(t, 1, merged[1].NumModels)
}

func TestFuse_ThreeSourceCluster(t *testing.T) {
	near := func(d float64) Box { return Box{100 + d, 100 + d, 200 + d, 200 + d} }

	merged, err := newTestFuser().Fuse(
		[]RawDetection{det(SourceObjects, "kitchen", 0.95, near(0))},
		[]RawDetection{det(SourceRegions, "Kitchen", 0.85, near(2))},
		[]RawDetection{fuzzyDet(SourceFloorplan, "kitchenette", 0.75, near(-3), 88)},
	)
	require.NoError(t, err)
	require.Len(t, merged, 1)

	m := merged[0]
	assert.Equal(t, "Kitchen", m.ClassName)
	assert.Equal(t, 3, m.NumModels)
	assert.InDelta(t, (0.95+0.85+0.75)/3, m.Confidence, 1e-12)
	require.NotNil(t, m.FuzzyScore)
	assert.Equal(t, 88.0, *m.FuzzyScore)
}

func TestFuse_WeightDecidesSeed(t *testing.T) {
	// The floorplan weight (0.9) pulls 0.92 down to 0.828, below the 0.85
	// regions detection, so the regions box must seed the cluster.
	floorplan := []RawDetection{fuzzyDet(SourceFloorplan, "bedroom", 0.92, Box{0, 0, 100, 100}, 90)}
	regions := []RawDetection{det(SourceRegions, "Bedroom 1", 0.85, Box{2, 2, 98, 98})}

	merged, err := newTestFuser().Fuse(floorplan, regions)
	require.NoError(t, err)
	require.Len(t, merged, 1)

	m := merged[0]
	assert.Equal(t, Box{2, 2, 98, 98}, m.Box)
	assert.Equal(t, []Source{SourceRegions, SourceFloorplan}, m.Sources)
	// Raw confidences, not weighted ones, feed the mean.
	assert.InDelta(t, (0.92+0.85)/2, m.Confidence, 1e-12)
}

func TestFuse_StableTieBreak(t *testing.T) {
	// Equal weighted confidence: input order decides the seed.
	a := det(SourceObjects, "door", 0.8, Box{0, 0, 100, 100})
	b := det(SourceRegions, "door", 0.8, Box{1, 1, 99, 99})

	merged, err := newTestFuser().Fuse([]RawDetection{a}, []RawDetection{b})
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, Box{0, 0, 100, 100}, merged[0].Box)
	assert.Equal(t, []Source{SourceObjects, SourceRegions}, merged[0].Sources)
}

func TestFuse_FuzzyScoreMax(t *testing.T) {
	merged, err := newTestFuser().Fuse(
		[]RawDetection{fuzzyDet(SourceFloorplan, "toilet", 0.9, Box{0, 0, 50, 50}, 72)},
		[]RawDetection{det(SourceObjects, "wc", 0.85, Box{1, 1, 49, 49})},
	)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	require.NotNil(t, merged[0].FuzzyScore)
	assert.Equal(t, 72.0, *merged[0].FuzzyScore)
}

func TestFuse_NoFuzzyScoreStaysAbsent(t *testing.T) {
	merged, err := newTestFuser().Fuse(
		[]RawDetection{det(SourceObjects, "door", 0.9, Box{0, 0, 50, 50})},
		[]RawDetection{det(SourceRegions, "door", 0.8, Box{1, 1, 49, 49})},
	)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Nil(t, merged[0].FuzzyScore)
}

func TestFuse_DegenerateBoxSurvivesAsSingleton(t *testing.T) {
	merged, err := newTestFuser().Fuse(
		[]RawDetection{det(SourceObjects, "door", 0.9, Box{10, 10, 10, 10})},
		[]RawDetection{det(SourceRegions, "door", 0.8, Box{0, 0, 100, 100})},
	)
	require.NoError(t, err)
	require.Len(t, merged, 2)
}

func TestFuse_EmittedInSeedOrder(t *testing.T) {
	merged, err := newTestFuser().Fuse([]RawDetection{
		det(SourceObjects, "window", 0.5, Box{0, 0, 10, 10}),
		det(SourceObjects, "door", 0.95, Box{100, 100, 110, 110}),
		det(SourceObjects, "wall", 0.7, Box{200, 200, 210, 210}),
	})
	require.NoError(t, err)
	require.Len(t, merged, 3)
	assert.Equal(t, "Door", merged[0].ClassName)
	assert.Equal(t, "Wall", merged[1].ClassName)
	assert.Equal(t, "Window", merged[2].ClassName)
}

func TestFuse_UnknownSourceFails(t *testing.T) {
	_, err := newTestFuser().Fuse([]RawDetection{
		det(Source("lidar"), "wall", 0.9, Box{0, 0, 10, 10}),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lidar")
}

func TestFuse_InvalidConfidenceFails(t *testing.T) {
	_, err := newTestFuser().Fuse([]RawDetection{
		det(SourceObjects, "wall", 1.2, Box{0, 0, 10, 10}),
	})
	require.Error(t, err)
}

func TestFuse_Deterministic(t *testing.T) {
	objects := []RawDetection{
		det(SourceObjects, "door", 0.9, Box{100, 100, 200, 200}),
		det(SourceObjects, "window", 0.6, Box{300, 100, 360, 180}),
	}
	regions := []RawDetection{det(SourceRegions, "door", 0.8, Box{102, 101, 199, 198})}
	floorplan := []RawDetection{fuzzyDet(SourceFloorplan, "Bedroom", 0.7, Box{400, 400, 600, 600}, 95)}

	fuser := newTestFuser()
	first, err := fuser.Fuse(objects, regions, floorplan)
	require.NoError(t, err)
	second, err := fuser.Fuse(objects, regions, floorplan)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFuse_InputNotMutated(t *testing.T) {
	objects := []RawDetection{
		det(SourceObjects, "door", 0.5, Box{0, 0, 10, 10}),
		det(SourceObjects, "door", 0.9, Box{100, 100, 110, 110}),
	}
	snapshot := append([]RawDetection(nil), objects...)

	_, err := newTestFuser().Fuse(objects)
	require.NoError(t, err)
	assert.Equal(t, snapshot, objects)
}
