package graph

var _ EventIterator = (*sliceIterator)(nil)

type sliceIterator struct {
	events []RetweetEvent
	curIdx int
}

// NewSliceIterator returns an EventIterator over an in-memory list of events.
func NewSliceIterator(events []RetweetEvent) EventIterator {
	return &sliceIterator{events: events}
}

func (i *sliceIterator) Next() bool {
	if i.curIdx >= len(i.events) {
		return false
	}
	i.curIdx++
	return true
}

func (i *sliceIterator) Event() RetweetEvent {
	return i.events[i.curIdx-1]
}

func (i *sliceIterator) Error() error {
	return nil
}

func (i *sliceIterator) Close() error {
	return nil
}
