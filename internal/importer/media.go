package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MediaStore is the external media collaborator: it turns a filename
// plus content into a stored, playable reference. The engine deals in
// filenames only.
type MediaStore interface {
	Put(name string, r io.Reader) error
}

// DirMediaStore stores media files flat in one directory.
type DirMediaStore struct {
	Dir string
}

// Put writes the file under its original name, creating the directory
// on first use. Path separators in names are rejected so a manifest
// cannot escape the media directory.
func (d *DirMediaStore) Put(name string, r io.Reader) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("unsafe media filename %q", name)
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}
	f, err := os.Create(filepath.Join(d.Dir, name))
	if err != nil {
		return fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write media file: %w", err)
	}
	return f.Close()
}

// rewriteMediaRefs replaces numeric media tokens in note field content
// with the decoded original filenames: <img src="3"> and [sound:3]
// become references to the real file.
func rewriteMediaRefs(fields string, names map[string]string) string {
	for token, name := range names {
		fields = strings.ReplaceAll(fields, `src="`+token+`"`, `src="`+name+`"`)
		fields = strings.ReplaceAll(fields, "[sound:"+token+"]", "[sound:"+name+"]")
	}
	return fields
}
