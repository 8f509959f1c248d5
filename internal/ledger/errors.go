package ledger

import "errors"

var (
	// ErrInvalid is returned for records that fail validation.
	ErrInvalid = errors.New("invalid record")
	// ErrUnknownGame is returned when a back-reference names a game that does not exist.
	ErrUnknownGame = errors.New("unknown game")
	// ErrPersist is returned when the table set could not be written. The
	// mutation that triggered the write has been discarded.
	ErrPersist = errors.New("persisting state")
	// ErrBlobNotFound is returned by a Repository when nothing is stored under the key.
	ErrBlobNotFound = errors.New("blob not found")
)
