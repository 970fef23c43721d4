package form

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
)

// File is an uploaded part held in memory.  Size is what the client sent;
// Data may be shorter when the upload exceeded the field's ceiling.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// Truncated reports whether Data holds less than the full upload.
func (f *File) Truncated() bool { return int64(len(f.Data)) < f.Size }

// FileFromHeader reads a multipart part.  At most limit+1 bytes are kept
// (limit ≤ 0 reads everything), which is enough to reject an oversize file
// without buffering all of it.  The declared Content-Type is trusted unless
// it is empty or application/octet-stream, in which case the content is
// sniffed.
func FileFromHeader(fh *multipart.FileHeader, limit int64) (*File, error) {
	rc, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}

	size := fh.Size
	if size < int64(len(data)) {
		size = int64(len(data))
	}

	return &File{
		Filename:    fh.Filename,
		ContentType: contentType(fh.Header.Get("Content-Type"), data),
		Size:        size,
		Data:        data,
	}, nil
}

func contentType(declared string, data []byte) string {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	if len(data) == 0 {
		return declared
	}
	mt, _, _ := mime.ParseMediaType(mimetype.Detect(data).String())
	return mt
}
