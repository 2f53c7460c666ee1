package unpacker

import "fmt"

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error {
	return e.Err
}

// ErrReadWords represents an error decoding the word records of a file.
type ErrReadWords struct {
	Filename string
	Record   int
	Err      error
}

func (e *ErrReadWords) Error() string {
	return fmt.Sprintf("error reading word %d of %q: %v", e.Record, e.Filename, e.Err)
}

func (e *ErrReadWords) Unwrap() error {
	return e.Err
}

// ErrDuplicateAddress is returned when a channel directory assigns the same
// hardware address twice.
type ErrDuplicateAddress struct {
	Address uint16
	First   ChannelInfo
	Second  ChannelInfo
}

func (e *ErrDuplicateAddress) Error() string {
	return fmt.Sprintf("address %d assigned twice: %v and %v", e.Address, e.First, e.Second)
}
