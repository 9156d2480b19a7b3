package protocol

// queue is a FIFO of raw inbound chunks.
type queue struct {
	head *node
	tail *node
	size int
}

type node struct {
	next  *node
	chunk []byte
}

func newQueue() *queue {
	head := &node{}
	return &queue{head: head, tail: head}
}

func (q *queue) Push(chunk []byte) {
	n := &node{chunk: chunk}
	q.tail.next = n
	q.tail = n
	q.size++
}

// Pop oldest chunk, nil when empty
func (q *queue) Pop() []byte {
	first := q.head.next
	if first == nil {
		return nil
	}
	q.head.next = first.next
	if q.tail == first {
		q.tail = q.head
	}
	q.size--
	return first.chunk
}

func (q *queue) Len() int {
	return q.size
}
