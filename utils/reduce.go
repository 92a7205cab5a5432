package utils

import "math"

// Reducer combines one scalar per worker partition into a global value seen
// by all of them. In a single-partition run the identity reducer is used and
// no synchronization occurs.
type Reducer interface {
	ReduceMin(rank int, local float64) (global float64)
}

type IdentityReducer struct{}

func (IdentityReducer) ReduceMin(rank int, local float64) float64 { return local }

// MinAllReducer is an in-process min-allreduce over NP partitions, backed by
// channels. Every participating partition blocks in ReduceMin until all NP
// contributions for the round have arrived, then all receive the minimum.
type MinAllReducer struct {
	NP   int
	in   chan float64
	outs []chan float64
}

func NewMinAllReducer(NP int) (r *MinAllReducer) {
	r = &MinAllReducer{
		NP:   NP,
		in:   make(chan float64, NP),
		outs: make([]chan float64, NP),
	}
	for n := 0; n < NP; n++ {
		r.outs[n] = make(chan float64, 1)
	}
	go r.run()
	return
}

func (r *MinAllReducer) run() {
	for {
		min := math.Inf(1)
		for n := 0; n < r.NP; n++ {
			v, ok := <-r.in
			if !ok {
				return
			}
			if v < min {
				min = v
			}
		}
		for n := 0; n < r.NP; n++ {
			r.outs[n] <- min
		}
	}
}

func (r *MinAllReducer) ReduceMin(rank int, local float64) float64 {
	r.in <- local
	return <-r.outs[rank]
}

// Close stops the background reduction loop. No partition may be blocked in
// ReduceMin when Close is called.
func (r *MinAllReducer) Close() { close(r.in) }
