package source

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

const maxLineSize = 1 << 20

// File streams the words of a UTF-8 text file.
type File struct {
	Path string
}

// NewFile returns a File source for path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Each implements Source.
func (f *File) Each(ctx context.Context, fn func([]byte) error) error {
	fd, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Path, err)
	}
	defer fd.Close()

	scanner := bufio.NewScanner(fd)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := Tokenize(scanner.Text(), func(w string) error {
			return fn([]byte(w))
		})
		if err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", f.Path, err)
	}
	return nil
}

// Name implements Source.
func (f *File) Name() string { return f.Path }
