package internal

import (
	"encoding/csv"
	"io"
	"iter"
)

type CSVRecord[T any] struct {
	Value T
	Error error
}

// ParseCSV yields parsed records one at a time. A parse or read error is
// delivered in-band on the record and terminates the sequence.
func ParseCSV[T any](r io.Reader, hasHeader bool, parse func(record, headers []string) (T, error)) iter.Seq[CSVRecord[T]] {
	return func(yield func(CSVRecord[T]) bool) {
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1

		var headers []string
		if hasHeader {
			row, err := reader.Read()
			if err != nil {
				yield(CSVRecord[T]{Error: err})
				return
			}
			headers = row
		}

		for {
			row, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(CSVRecord[T]{Error: err})
				return
			}

			value, err := parse(row, headers)
			if !yield(CSVRecord[T]{Value: value, Error: err}) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}
