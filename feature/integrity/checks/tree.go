package checks

import (
	"fmt"
	"io/fs"
	"path"

	"github.com/dustin/go-humanize"
	"github.com/xlab/treeprint"
)

// BuildTree renders the content of fsys as a tree rooted at name, with file
// sizes as node metadata.
func BuildTree(fsys fs.FS, name string) (treeprint.Tree, error) {
	root := treeprint.NewWithRoot(name)
	branches := map[string]treeprint.Tree{".": root}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}

		parent, ok := branches[path.Dir(p)]
		if !ok {
			return fmt.Errorf("missing parent for %s", p)
		}

		if d.IsDir() {
			branches[p] = parent.AddBranch(d.Name())
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		parent.AddMetaNode(humanize.IBytes(uint64(info.Size())), d.Name())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build asset tree: %w", err)
	}

	return root, nil
}
