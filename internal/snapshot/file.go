package snapshot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// PathError reports a failed precondition on a dump or load path.
type PathError struct {
	Path   string
	Op     string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Reason)
}

// Dump encodes the record and writes it to path. The parent directory
// must already exist; the filename extension selects the compression
// scheme (see compressorFor).
func Dump(r Record, path string) error {
	parent := filepath.Dir(path)
	info, err := os.Stat(parent)
	if err != nil || !info.IsDir() {
		return &PathError{Path: path, Op: "dump", Reason: "parent is not an existing directory"}
	}

	comp, err := compressorFor(path)
	if err != nil {
		return err
	}

	data, err := Encode(r)
	if err != nil {
		return err
	}
	compressed, err := comp.compress(data)
	if err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return &PathError{Path: path, Op: "dump", Reason: err.Error()}
	}
	if _, err := file.Write(compressed); err != nil {
		_ = file.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	return file.Close()
}

// Load reads, decompresses, and decodes a record from path. The file must
// exist and be a readable regular file.
func Load(path string) (Record, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Record{}, &PathError{Path: path, Op: "load", Reason: "not an existing file"}
	}

	comp, err := compressorFor(path)
	if err != nil {
		return Record{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return Record{}, &PathError{Path: path, Op: "load", Reason: err.Error()}
	}
	defer file.Close()

	compressed, err := io.ReadAll(file)
	if err != nil {
		return Record{}, fmt.Errorf("read snapshot: %w", err)
	}
	data, err := comp.decompress(compressed)
	if err != nil {
		return Record{}, fmt.Errorf("decompress snapshot: %w", err)
	}
	return Decode(data)
}
