package planner

import "container/heap"

type entry[N any] struct {
	node N
	f    int
	seq  uint64
}

// queue orders entries by f = g + h, then by insertion sequence.
type queue[N any] []entry[N]

func (q queue[N]) Len() int { return len(q) }
func (q queue[N]) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}
func (q queue[N]) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *queue[N]) Push(x any)   { *q = append(*q, x.(entry[N])) }
func (q *queue[N]) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	old[n-1] = entry[N]{}
	*q = old[:n-1]
	return x
}

func (q *queue[N]) push(e entry[N]) { heap.Push(q, e) }
func (q *queue[N]) pop() entry[N]   { return heap.Pop(q).(entry[N]) }

// moveBest pops up to n of the best entries of src into dst.
func moveBest[N any](dst, src *queue[N], n int) int {
	moved := 0
	for ; moved < n && src.Len() > 0; moved++ {
		dst.push(src.pop())
	}
	return moved
}
