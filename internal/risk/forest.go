package risk

import (
	"math/rand/v2"
	"sort"
)

// Forest ансамбль деревьев решений с бэггингом и голосованием большинства.
type Forest struct {
	trees   []*node
	classes int
}

type node struct {
	leaf      bool
	class     int
	feature   int
	threshold float64
	left      *node // x[feature] <= threshold
	right     *node
}

// ForestOptions параметры обучения.
type ForestOptions struct {
	Trees    int
	MaxDepth int
	Seed     uint64
}

// FitForest обучает ансамбль на признаках x и метках y из [0, classes).
func FitForest(x [][]float64, y []int, classes int, opts ForestOptions) *Forest {
	if opts.Trees <= 0 {
		opts.Trees = 25
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 4
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	f := &Forest{classes: classes}
	n := len(x)
	for t := 0; t < opts.Trees; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.IntN(n)
		}
		f.trees = append(f.trees, grow(x, y, sample, classes, 0, opts.MaxDepth))
	}
	return f
}

// Predict голосование деревьев; при равенстве побеждает меньший класс.
func (f *Forest) Predict(v []float64) int {
	votes := make([]int, f.classes)
	for _, t := range f.trees {
		votes[t.predict(v)]++
	}
	best := 0
	for c := 1; c < f.classes; c++ {
		if votes[c] > votes[best] {
			best = c
		}
	}
	return best
}

func (n *node) predict(v []float64) int {
	for !n.leaf {
		if v[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.class
}

func grow(x [][]float64, y []int, idx []int, classes, depth, maxDepth int) *node {
	counts := classCounts(y, idx, classes)
	majority := argmax(counts)
	if depth >= maxDepth || len(idx) < 2 || counts[majority] == len(idx) {
		return &node{leaf: true, class: majority}
	}

	feature, threshold, ok := bestSplit(x, y, idx, classes)
	if !ok {
		return &node{leaf: true, class: majority}
	}
	var left, right []int
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &node{
		feature:   feature,
		threshold: threshold,
		left:      grow(x, y, left, classes, depth+1, maxDepth),
		right:     grow(x, y, right, classes, depth+1, maxDepth),
	}
}

// bestSplit перебирает середины между соседними значениями каждого признака
// и выбирает разбиение с минимальной взвешенной неоднородностью Джини.
func bestSplit(x [][]float64, y []int, idx []int, classes int) (int, float64, bool) {
	bestScore := gini(classCounts(y, idx, classes), len(idx))
	bestFeature, bestThreshold, found := 0, 0.0, false

	sorted := make([]int, len(idx))
	for f := 0; f < len(x[idx[0]]); f++ {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool { return x[sorted[a]][f] < x[sorted[b]][f] })

		left := make([]int, classes)
		right := classCounts(y, sorted, classes)
		for k := 0; k < len(sorted)-1; k++ {
			c := y[sorted[k]]
			left[c]++
			right[c]--
			cur, next := x[sorted[k]][f], x[sorted[k+1]][f]
			if cur == next {
				continue
			}
			nl, nr := k+1, len(sorted)-k-1
			score := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(len(sorted))
			if score < bestScore {
				bestScore, bestFeature, bestThreshold, found = score, f, (cur+next)/2, true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func classCounts(y []int, idx []int, classes int) []int {
	counts := make([]int, classes)
	for _, i := range idx {
		counts[y[i]]++
	}
	return counts
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		g -= p * p
	}
	return g
}

func argmax(v []int) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
