// Package download streams resolved content to disk and types the
// resulting file by sniffing its bytes.
package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ResultKind discriminates the outcome of one download attempt.
// Exactly one kind applies per attempt.
type ResultKind string

// Download result kinds.
const (
	// KindSkipped means the resource was not eligible for download.
	KindSkipped ResultKind = "skipped"
	// KindError means the write failed; Path may point at a partial file.
	KindError ResultKind = "error"
	// KindSuccess means the file was written but not yet typed.
	KindSuccess ResultKind = "success"
	// KindTypedSuccess means the file was written and its type sniffed.
	KindTypedSuccess ResultKind = "typed_success"
	// KindIndeterminate means the file was written but its type could
	// not be established.
	KindIndeterminate ResultKind = "indeterminate"
)

// Result records one download attempt.
type Result struct {
	Kind ResultKind `json:"kind"`
	// Reason explains a skip.
	Reason string `json:"reason,omitempty"`
	// Err holds the failure for KindError.
	Err error `json:"-"`
	// Path is the final on-disk destination.
	Path string `json:"path,omitempty"`
	// Size is the number of bytes written.
	Size int64 `json:"size,omitempty"`
	// MIME and Extension describe the sniffed file type.
	MIME      string `json:"mime,omitempty"`
	Extension string `json:"extension,omitempty"`
}

// Skipped builds a skip result with the given reason.
func Skipped(reason string) Result {
	return Result{Kind: KindSkipped, Reason: reason}
}

// Downloader writes payloads into a destination directory and finalizes
// them with a sniffed-type extension.
type Downloader interface {
	Download(ctx context.Context, body io.Reader) Result
}

// FileDownloader implements Downloader on the local filesystem.
type FileDownloader struct {
	dir string
}

// NewFileDownloader builds a FileDownloader rooted at dir, creating the
// directory if needed.
func NewFileDownloader(dir string) (*FileDownloader, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("destination directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create destination directory: %w", err)
	}
	return &FileDownloader{dir: dir}, nil
}

// Download streams body to a fresh file, sniffs its type, and renames it
// to carry the detected extension. I/O failures are returned as error
// results rather than raised, so one resource's failure never aborts
// sibling processing.
func (d *FileDownloader) Download(ctx context.Context, body io.Reader) Result {
	if err := ctx.Err(); err != nil {
		return Result{Kind: KindError, Err: err}
	}

	name := uuid.NewString()
	path := filepath.Join(d.dir, name)

	size, err := d.write(path, body)
	if err != nil {
		return Result{Kind: KindError, Err: err, Path: path, Size: size}
	}
	return d.finalize(path, size)
}

func (d *FileDownloader) write(path string, body io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return 0, fmt.Errorf("create download file: %w", err)
	}
	size, err := io.Copy(f, body)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return size, fmt.Errorf("write download file: %w", err)
	}
	return size, nil
}

// finalize sniffs the written file and renames it with the detected
// extension.
func (d *FileDownloader) finalize(path string, size int64) Result {
	detected, err := mimetype.DetectFile(path)
	if err != nil || detected == nil {
		return Result{Kind: KindIndeterminate, Path: path, Size: size}
	}

	ext := detected.Extension()
	finalPath := path
	if ext != "" {
		finalPath = path + ext
		if err := os.Rename(path, finalPath); err != nil {
			// Keep the untyped file rather than losing the payload.
			return Result{
				Kind: KindSuccess,
				Path: path,
				Size: size,
				MIME: detected.String(),
			}
		}
	}
	return Result{
		Kind:      KindTypedSuccess,
		Path:      finalPath,
		Size:      size,
		MIME:      detected.String(),
		Extension: ext,
	}
}
