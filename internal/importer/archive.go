package importer

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the sqlite driver
)

// Names of the archive members the importer reads.
const (
	collectionFile      = "collection.anki2"
	collectionFileNewer = "collection.anki21"
	mediaManifestFile   = "media"
)

// archive wraps an opened deck package.
type archive struct {
	zr      *zip.ReadCloser
	byName  map[string]*zip.File
	tempDir string
}

func openArchive(path string) (*archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchive, err)
	}
	a := &archive{zr: zr, byName: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		a.byName[f.Name] = f
	}
	return a, nil
}

func (a *archive) Close() error {
	if a.tempDir != "" {
		os.RemoveAll(a.tempDir)
	}
	return a.zr.Close()
}

// openDatabase extracts the embedded collection database to a private
// temp dir and opens it read-only. The newer schema name wins when both
// are present.
func (a *archive) openDatabase(stagingID string) (*sqlx.DB, error) {
	member := a.byName[collectionFileNewer]
	if member == nil {
		member = a.byName[collectionFile]
	}
	if member == nil {
		return nil, fmt.Errorf("%w: no embedded collection database", ErrDatabase)
	}

	dir, err := os.MkdirTemp("", "mnemo-import-"+stagingID+"-*")
	if err != nil {
		return nil, fmt.Errorf("%w: staging dir: %v", ErrDatabase, err)
	}
	a.tempDir = dir

	dbPath := filepath.Join(dir, "collection.sqlite")
	if err := extractTo(member, dbPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	db, err := sqlx.Connect("sqlite", dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return db, nil
}

// manifest decodes the media manifest: numeric token -> original name.
// A missing manifest means an archive without media, not an error.
func (a *archive) manifest() (map[string]string, error) {
	member := a.byName[mediaManifestFile]
	if member == nil {
		return map[string]string{}, nil
	}
	r, err := member.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: media manifest: %v", ErrArchive, err)
	}
	defer r.Close()

	var m map[string]string
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: media manifest: %v", ErrArchive, err)
	}
	return m, nil
}

// mediaFile opens the payload stored under a numeric token name.
func (a *archive) mediaFile(token string) (io.ReadCloser, error) {
	member := a.byName[token]
	if member == nil {
		return nil, fmt.Errorf("media payload %q missing from archive", token)
	}
	return member.Open()
}

func extractTo(member *zip.File, dest string) error {
	r, err := member.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
