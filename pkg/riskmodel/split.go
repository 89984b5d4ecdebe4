package riskmodel

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

const (
	DefaultTestSize = 0.2
	DefaultSeed     = 42
)

// StratifiedSplit shuffles examples deterministically for seed and splits them so that each
// label keeps its share of the full dataset in the test split. The test split holds
// ceil(testSize*n) examples, allocated to labels by largest remainder.
func StratifiedSplit(examples []Example, testSize float64, seed int64) (train, test []Example, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be in (0, 1), got %v", testSize)
	}

	byLabel := map[int][]int{}
	for i, ex := range examples {
		byLabel[ex.Label] = append(byLabel[ex.Label], i)
	}
	labels := make([]int, 0, len(byLabel))
	for label, idx := range byLabel {
		if len(idx) < 2 {
			return nil, nil, fmt.Errorf(
				"label %d has only %d example, at least 2 are needed to stratify",
				label,
				len(idx),
			)
		}
		labels = append(labels, label)
	}
	sort.Ints(labels)

	n := len(examples)
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest < len(labels) || nTrain < len(labels) {
		return nil, nil, fmt.Errorf(
			"%d examples cannot be split into train/test sets covering %d labels",
			n,
			len(labels),
		)
	}

	testCounts := allocate(nTest, labels, byLabel, n)

	rng := rand.New(rand.NewSource(seed))
	for _, label := range labels {
		idx := byLabel[label]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for k, exIdx := range idx {
			if k < testCounts[label] {
				test = append(test, examples[exIdx])
			} else {
				train = append(train, examples[exIdx])
			}
		}
	}
	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })

	return train, test, nil
}

// allocate distributes total slots across labels proportionally to their frequency.
func allocate(total int, labels []int, byLabel map[int][]int, n int) map[int]int {
	counts := make(map[int]int, len(labels))
	type remainder struct {
		label int
		frac  float64
	}
	remainders := make([]remainder, 0, len(labels))

	assigned := 0
	for _, label := range labels {
		exact := float64(total) * float64(len(byLabel[label])) / float64(n)
		counts[label] = int(math.Floor(exact))
		assigned += counts[label]
		remainders = append(remainders, remainder{label: label, frac: exact - math.Floor(exact)})
	}

	sort.SliceStable(remainders, func(i, j int) bool { return remainders[i].frac > remainders[j].frac })
	for i := 0; assigned < total; i = (i + 1) % len(remainders) {
		label := remainders[i].label
		if counts[label] < len(byLabel[label])-1 {
			counts[label]++
			assigned++
		}
	}

	return counts
}
