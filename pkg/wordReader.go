package unpacker

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// WordRecord is the on-disk layout of a word, little endian.
type WordRecord struct {
	Address   uint16
	ADCData   uint16
	CFDData   uint16
	Flags     uint16
	Timestamp int64
}

const (
	WORD_RECORD_SIZE        = 16
	FLAG_CFD_FAIL    uint16 = 1 << 0
	FLAG_FINISH_CODE uint16 = 1 << 1
)

func (r WordRecord) Word() Word {
	return Word{
		Address:    r.Address,
		ADCData:    r.ADCData,
		CFDData:    r.CFDData,
		CFDFail:    r.Flags&FLAG_CFD_FAIL != 0,
		FinishCode: r.Flags&FLAG_FINISH_CODE != 0,
		Timestamp:  r.Timestamp,
	}
}

func NewWordRecord(w Word) WordRecord {
	var flags uint16
	if w.CFDFail {
		flags |= FLAG_CFD_FAIL
	}
	if w.FinishCode {
		flags |= FLAG_FINISH_CODE
	}
	return WordRecord{
		Address:   w.Address,
		ADCData:   w.ADCData,
		CFDData:   w.CFDData,
		Flags:     flags,
		Timestamp: w.Timestamp,
	}
}

// ReadWords decodes records until EOF. A truncated trailing record is an
// error.
func ReadWords(r io.Reader) ([]Word, error) {
	reader := bufio.NewReader(r)
	words := make([]Word, 0)
	for {
		var record WordRecord
		err := binary.Read(reader, binary.LittleEndian, &record)
		if errors.Is(err, io.EOF) {
			return words, nil
		}
		if err != nil {
			return words, &ErrReadWords{Record: len(words), Err: err}
		}
		words = append(words, record.Word())
	}
}

func WriteWords(w io.Writer, words []Word) error {
	writer := bufio.NewWriter(w)
	for i, word := range words {
		record := NewWordRecord(word)
		if err := binary.Write(writer, binary.LittleEndian, &record); err != nil {
			return fmt.Errorf("error writing word %d: %w", i, err)
		}
	}
	return writer.Flush()
}

// ReadWordsFromFile loads a whole word file. Files ending in .zst or .lz4
// are decompressed on the fly.
func ReadWordsFromFile(filename string) ([]Word, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	var reader io.Reader = file
	switch {
	case strings.HasSuffix(filename, ".zst"):
		decoder, err := zstd.NewReader(file)
		if err != nil {
			return nil, &ErrOpenFile{Filename: filename, Err: err}
		}
		defer decoder.Close()
		reader = decoder
	case strings.HasSuffix(filename, ".lz4"):
		reader = lz4.NewReader(file)
	}

	words, err := ReadWords(reader)
	if err != nil {
		var readErr *ErrReadWords
		if errors.As(err, &readErr) {
			readErr.Filename = filename
		}
		return nil, err
	}
	if verbosity > 0 {
		message := fmt.Sprintf("Read %d words from %s", len(words), filename)
		logger.Info(message, "wordReader")
	}
	return words, nil
}

// WriteWordsToFile stores words, compressing by file extension like
// ReadWordsFromFile.
func WriteWordsToFile(filename string, words []Word) error {
	file, err := os.Create(filename)
	if err != nil {
		return &ErrOpenFile{Filename: filename, Err: err}
	}

	var writer io.WriteCloser
	switch {
	case strings.HasSuffix(filename, ".zst"):
		encoder, err := zstd.NewWriter(file)
		if err != nil {
			file.Close()
			return fmt.Errorf("error creating zstd encoder: %w", err)
		}
		writer = encoder
	case strings.HasSuffix(filename, ".lz4"):
		writer = lz4.NewWriter(file)
	}

	var errs []error
	if writer != nil {
		if err := WriteWords(writer, words); err != nil {
			errs = append(errs, err)
		}
		if err := writer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing compressor: %w", err))
		}
	} else if err := WriteWords(file, words); err != nil {
		errs = append(errs, err)
	}
	if err := file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file %q: %w", filename, err))
	}
	return errors.Join(errs...)
}
