package publish

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/klauspost/compress/flate"
)

// Archive zips the directory src into dst. Entries are stored below the
// base name of src, so unpacking yields a single bundle folder.
func Archive(fsys filesystem.FileSystem, src, dst string) (int, error) {
	src = filepath.Clean(src)
	base := filepath.Base(src)

	out, err := fsys.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dst, err)
	}

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	files := 0
	err = fsys.WalkDir(src, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		name := path.Join(base, filepath.ToSlash(rel))

		info, err := entry.Info()
		if err != nil {
			return err
		}

		if entry.IsDir() {
			_, err := zw.CreateHeader(&zip.FileHeader{Name: name + "/", Modified: info.ModTime()})
			return err
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = name
		header.Method = zip.Deflate

		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		if err := copyFile(fsys, p, w); err != nil {
			return err
		}
		files++
		return nil
	})
	if err != nil {
		_ = zw.Close()
		_ = out.Close()
		_ = fsys.Remove(dst)
		return files, fmt.Errorf("failed to archive %s: %w", src, err)
	}

	if err := zw.Close(); err != nil {
		_ = out.Close()
		_ = fsys.Remove(dst)
		return files, fmt.Errorf("failed to finish %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		_ = fsys.Remove(dst)
		return files, fmt.Errorf("failed to write %s: %w", dst, err)
	}

	return files, nil
}

func copyFile(fsys filesystem.FileSystem, p string, w io.Writer) error {
	in, err := fsys.Open(p)
	if err != nil {
		return err
	}
	defer in.Close()

	_, err = io.Copy(w, in)
	return err
}
