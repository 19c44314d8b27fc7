// Package source tracks source files and byte-range spans across the
// compilation pipeline so every token, AST node and diagnostic can carry a
// small, copyable position instead of a full file/line/column triple.
package source

// FileID identifies a registered file within a FileSet.
type FileID uint32

// NoFileID marks the absence of a file.
const NoFileID FileID = 0

// File holds the content and cached newline index of one source file.
type File struct {
	ID       FileID
	Path     string
	Content  []byte
	lineStarts []uint32
}

func newFile(id FileID, path string, content []byte) *File {
	f := &File{ID: id, Path: path, Content: content}
	f.indexLines()
	return f
}

func (f *File) indexLines() {
	f.lineStarts = append(f.lineStarts[:0], 0)
	for i, b := range f.Content {
		if b == '\n' {
			f.lineStarts = append(f.lineStarts, uint32(i+1))
		}
	}
}

// Position returns the 1-based line and column for a byte offset.
func (f *File) Position(offset uint32) (line, col int) {
	if f == nil || len(f.lineStarts) == 0 {
		return 1, 1
	}
	lo, hi := 0, len(f.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	line = lo + 1
	col = int(offset-f.lineStarts[lo]) + 1
	return line, col
}

// LineText returns the content of the given 1-based line, without its
// trailing newline.
func (f *File) LineText(line int) string {
	if f == nil || line < 1 || line > len(f.lineStarts) {
		return ""
	}
	start := f.lineStarts[line-1]
	var end uint32
	if line < len(f.lineStarts) {
		end = f.lineStarts[line] - 1
	} else {
		end = uint32(len(f.Content))
	}
	if end > uint32(len(f.Content)) {
		end = uint32(len(f.Content))
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}
