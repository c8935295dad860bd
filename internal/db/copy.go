package db

// CopyRow is a record that knows its COPY column values.
type CopyRow interface {
	CopyValues() ([]any, error)
}

// ChannelSource implements pgx.CopyFromSource by reading rows from a channel.
// The producer closes the channel when done; a producer failure is reported
// with Fail before the channel is closed.
type ChannelSource[T CopyRow] struct {
	ch      <-chan T
	current T
	err     error
	rows    int64
}

// NewChannelSource creates a CopyFromSource backed by a channel.
func NewChannelSource[T CopyRow](ch <-chan T) *ChannelSource[T] {
	return &ChannelSource[T]{ch: ch}
}

// Next advances to the next row. Returns false when the channel is closed.
func (s *ChannelSource[T]) Next() bool {
	row, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = row
	s.rows++
	return true
}

// Values returns the current row's values in COPY column order.
func (s *ChannelSource[T]) Values() ([]any, error) {
	return s.current.CopyValues()
}

// Err returns the error recorded by Fail. Only valid once Next has returned
// false.
func (s *ChannelSource[T]) Err() error {
	return s.err
}

// Fail aborts the copy with err.
func (s *ChannelSource[T]) Fail(err error) {
	s.err = err
}

// Rows returns the number of rows handed to COPY so far.
func (s *ChannelSource[T]) Rows() int64 {
	return s.rows
}
