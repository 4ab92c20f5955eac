package glyphcache

// lruList is a doubly linked list of cache items, most recently used first.
// Items are linked intrusively. lruList is not synchronized; it is guarded by
// its shard's mutex.
type lruList struct {
	head, tail *item
	len        int
}

func (l *lruList) pushFront(it *item) {
	it.prev = nil
	it.next = l.head
	if l.head != nil {
		l.head.prev = it
	}
	l.head = it
	if l.tail == nil {
		l.tail = it
	}
	l.len++
}

func (l *lruList) remove(it *item) {
	if it.prev != nil {
		it.prev.next = it.next
	} else {
		l.head = it.next
	}
	if it.next != nil {
		it.next.prev = it.prev
	} else {
		l.tail = it.prev
	}
	it.prev, it.next = nil, nil
	l.len--
}

func (l *lruList) moveToFront(it *item) {
	if l.head == it {
		return
	}
	l.remove(it)
	l.pushFront(it)
}

// back returns the least recently used item, or nil.
func (l *lruList) back() *item {
	return l.tail
}
