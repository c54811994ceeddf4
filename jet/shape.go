package jet

import "sync"

// shape is the monomial layout shared by every MTS of a given (K,M): the
// list of exponent tuples with total degree <= M, sorted by ascending total
// degree (so index 0 is always the constant monomial, and the division/sqrt
// recursions below can assume every monomial they depend on at a smaller
// total degree has already been resolved), plus the reverse lookup from an
// exponent tuple to its index.
type shape struct {
	k, m    int
	exps    [][]int8
	deg     []int
	lookup  map[string]int
	zeroIdx int
}

var shapeCache sync.Map // key [2]int{K,M} -> *shape

func getShape(k, m int) *shape {
	key := [2]int{k, m}
	if v, ok := shapeCache.Load(key); ok {
		return v.(*shape)
	}
	sh := buildShape(k, m)
	actual, _ := shapeCache.LoadOrStore(key, sh)
	return actual.(*shape)
}

func buildShape(k, m int) *shape {
	var exps [][]int8
	var rec func(prefix []int8, remaining int)
	rec = func(prefix []int8, remaining int) {
		if len(prefix) == k {
			cp := make([]int8, k)
			copy(cp, prefix)
			exps = append(exps, cp)
			return
		}
		for e := 0; e <= remaining; e++ {
			rec(append(prefix, int8(e)), remaining-e)
		}
	}
	rec(make([]int8, 0, k), m)

	deg := make([]int, len(exps))
	for i, e := range exps {
		d := 0
		for _, v := range e {
			d += int(v)
		}
		deg[i] = d
	}

	// Stable sort by ascending total degree; index 0 stays the zero tuple
	// because it is the unique minimum.
	order := make([]int, len(exps))
	for i := range order {
		order[i] = i
	}
	// insertion sort: N is small (K<=16, M<=8 in practice)
	for i := 1; i < len(order); i++ {
		j := i
		for j > 0 && deg[order[j-1]] > deg[order[j]] {
			order[j-1], order[j] = order[j], order[j-1]
			j--
		}
	}
	sortedExps := make([][]int8, len(exps))
	sortedDeg := make([]int, len(exps))
	for newIdx, oldIdx := range order {
		sortedExps[newIdx] = exps[oldIdx]
		sortedDeg[newIdx] = deg[oldIdx]
	}

	lookup := make(map[string]int, len(sortedExps))
	for i, e := range sortedExps {
		lookup[expKey(e)] = i
	}

	return &shape{
		k:       k,
		m:       m,
		exps:    sortedExps,
		deg:     sortedDeg,
		lookup:  lookup,
		zeroIdx: lookup[expKey(make([]int8, k))],
	}
}

func expKey(e []int8) string {
	b := make([]byte, len(e))
	for i, v := range e {
		b[i] = byte(v)
	}
	return string(b)
}

// indexOfSum returns the index of exps[i]+exps[j] in sh, or -1 if that
// combined monomial exceeds total degree M.
func (sh *shape) indexOfSum(i, j int) int {
	if sh.deg[i]+sh.deg[j] > sh.m {
		return -1
	}
	combined := make([]int8, sh.k)
	for v := 0; v < sh.k; v++ {
		combined[v] = sh.exps[i][v] + sh.exps[j][v]
	}
	idx, ok := sh.lookup[expKey(combined)]
	if !ok {
		return -1
	}
	return idx
}
