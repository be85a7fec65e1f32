package construct

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// AssetType selects how an asset is staged next to the synthesized stack.
type AssetType string

const (
	// AssetFile copies a single file.
	AssetFile AssetType = "FILE"
	// AssetDirectory copies a directory tree.
	AssetDirectory AssetType = "DIRECTORY"
	// AssetArchive zips a directory into archive.zip.
	AssetArchive AssetType = "ARCHIVE"
)

const archiveFileName = "archive.zip"

// zip entries carry a fixed timestamp so the archive hash only depends on content.
var archiveModTime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// AssetConfig configures a local file or directory to ship with a stack.
type AssetConfig struct {
	Path string
	Type AssetType
}

// Asset is a local file or directory copied into the stack output.
type Asset struct {
	ID         string
	SourcePath string
	Type       AssetType
	Hash       string
}

// NewAsset declares an asset. The source is hashed immediately so Path and
// FileName can be used in resource configuration before synthesis.
func NewAsset(s *Stack, id string, cfg AssetConfig) *Asset {
	s.claim(id)
	a := &Asset{ID: id, SourcePath: cfg.Path, Type: cfg.Type}
	if a.Type == "" {
		a.Type = inferAssetType(cfg.Path)
	}
	if cfg.Path == "" {
		s.Report(id, "asset path is required", "Set AssetConfig.Path")
	} else if h, err := hashSource(cfg.Path); err != nil {
		s.Report(id, fmt.Sprintf("cannot read asset %s: %v", cfg.Path, err), "Build the asset before synthesizing")
	} else {
		a.Hash = h
	}
	s.assets = append(s.assets, a)
	return a
}

func inferAssetType(p string) AssetType {
	if fi, err := os.Stat(p); err == nil && fi.IsDir() {
		return AssetDirectory
	}
	return AssetFile
}

// FileName is the name of the staged file or directory.
func (a *Asset) FileName() string {
	if a.Type == AssetArchive {
		return archiveFileName
	}
	return filepath.Base(a.SourcePath)
}

// Path is the staged location relative to the stack's working directory.
func (a *Asset) Path() string {
	return path.Join("assets", SanitizeName(a.ID), a.Hash, a.FileName())
}

// Stage produces the staged files keyed by their path relative to the stack
// working directory.
func (a *Asset) Stage() (map[string][]byte, error) {
	out := make(map[string][]byte)
	switch a.Type {
	case AssetArchive:
		data, err := zipDir(a.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("archive asset %s: %w", a.ID, err)
		}
		out[a.Path()] = data
	case AssetDirectory:
		err := walkFiles(a.SourcePath, func(rel string, data []byte) error {
			out[path.Join(a.Path(), rel)] = data
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("copy asset %s: %w", a.ID, err)
		}
	case AssetFile:
		// #nosec G304
		data, err := os.ReadFile(a.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("copy asset %s: %w", a.ID, err)
		}
		out[a.Path()] = data
	default:
		return nil, fmt.Errorf("asset %s: unknown type %q", a.ID, a.Type)
	}
	return out, nil
}

// hashSource hashes a file or, for directories, every file's relative path and content.
func hashSource(src string) (string, error) {
	fi, err := os.Stat(src)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	if !fi.IsDir() {
		// #nosec G304
		f, err := os.Open(src)
		if err != nil {
			return "", err
		}
		defer f.Close()
		if _, err := io.Copy(h, f); err != nil {
			return "", err
		}
		return strings.ToUpper(hex.EncodeToString(h.Sum(nil))), nil
	}
	err = walkFiles(src, func(rel string, data []byte) error {
		h.Write([]byte(rel))
		h.Write([]byte{0})
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil))), nil
}

// walkFiles visits regular files under root in lexical order with slash-separated relative paths.
func walkFiles(root string, fn func(rel string, data []byte) error) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if rel == "." {
			rel = filepath.Base(p)
		}
		// #nosec G304
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		return fn(filepath.ToSlash(rel), data)
	})
}

func zipDir(root string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	err := walkFiles(root, func(rel string, data []byte) error {
		hdr := &zip.FileHeader{Name: rel, Method: zip.Deflate, Modified: archiveModTime}
		hdr.SetMode(0o644)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
