package vault

import (
	"path"
	"strings"

	"github.com/spf13/afero"

	"xsync/internal/model"
)

// Vault writes rendered posts into a directory tree keyed by creation date.
// Path existence is the only deduplication signal; a file, once written, is
// never rewritten or diffed.
type Vault struct {
	fs   afero.Fs
	root string
}

func New(fs afero.Fs, root string) *Vault {
	return &Vault{fs: fs, root: root}
}

// PostPath derives the vault-relative target path for a post,
// YYYY/MM/DD/<id>.md, from the first ten characters of created_at.
func PostPath(p model.Post) string {
	date := p.CreatedAt
	if len(date) > 10 {
		date = date[:10]
	}
	return path.Join(strings.ReplaceAll(date, "-", "/"), p.ID+".md")
}

func (v *Vault) Exists(rel string) (bool, error) {
	return afero.Exists(v.fs, path.Join(v.root, rel))
}

// Write creates the containing directory and writes the file. Mkdir failures
// are ignorable; a real problem surfaces from the write itself.
func (v *Vault) Write(rel, content string) error {
	full := path.Join(v.root, rel)
	_ = v.fs.MkdirAll(path.Dir(full), 0o755)
	return afero.WriteFile(v.fs, full, []byte(content), 0o644)
}
