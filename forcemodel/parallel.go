package forcemodel

import (
	"sync"

	"github.com/ast-dyn/apophis/ring"
)

// EvalParallel is functionally identical to Eval but partitions the
// pairwise body loop (Newtonian acceleration and oblateness) across
// worker goroutines, each writing to disjoint slots of preallocated
// per-body slices, then combines and applies the EIH correction and
// non-gravitational terms serially exactly as Eval does. Per section
// 5/9's concurrency note, results must agree with Eval up to
// floating-point associativity.
func EvalParallel[T ring.Field[T]](s State[T], bs []BodyState, sunGM float64, workers int) (Deriv[T], error) {
	proto := s.R[0]
	n := len(bs)

	newtonian := make([]Vec3[T], n)
	relPos := make([]Vec3[T], n)
	rVals := make([]T, n)
	oblAcc := make([]Vec3[T], n)
	errs := make([]error, n)

	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				b := bs[i]
				rel := vSub(s.R, vConst(proto, b.Pos))
				r, err := vNorm(rel)
				if err != nil {
					errs[i] = err
					continue
				}
				r3 := r.Mul(r).Mul(r)
				mu := constT(proto, b.Body.GM)
				invR3, err := mu.Div(r3)
				if err != nil {
					errs[i] = err
					continue
				}
				newtonian[i] = vScaleT(rel, invR3.Neg())
				relPos[i] = rel
				rVals[i] = r

				if b.Body.Oblate {
					oa, err := oblateness(rel, r, b)
					if err != nil {
						errs[i] = err
						continue
					}
					oblAcc[i] = oa
				} else {
					oblAcc[i] = vZero(proto)
				}
			}
		}(lo, hi)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return Deriv[T]{}, err
		}
	}

	acc := vZero(proto)
	for i := range bs {
		acc = vAdd(acc, newtonian[i])
		acc = vAdd(acc, oblAcc[i])
	}

	eihAcc, err := eihCorrection(s, bs, relPos, rVals, newtonian, sunGM)
	if err != nil {
		return Deriv[T]{}, err
	}
	acc = vAdd(acc, eihAcc)

	sunIdx := -1
	for i, b := range bs {
		if b.Body.Name == "Sun" {
			sunIdx = i
			break
		}
	}
	if sunIdx >= 0 {
		sunRel := relPos[sunIdx]
		sunR := rVals[sunIdx]
		invSunR, err := proto.One().Div(sunR)
		if err != nil {
			return Deriv[T]{}, err
		}
		rHat := vScaleT(sunRel, invSunR)
		acc = vAdd(acc, vScaleT(rHat, s.Yark))
		radMag, err := constT(proto, sunGM).Div(sunR.Mul(sunR))
		if err != nil {
			return Deriv[T]{}, err
		}
		acc = vAdd(acc, vScaleT(rHat, s.Rad.Mul(radMag)))
	}

	return Deriv[T]{R: s.V, V: acc, Yark: proto.Zero(), Rad: proto.Zero()}, nil
}
