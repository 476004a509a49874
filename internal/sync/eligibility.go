package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
)

// Eligibility is the outcome of checking whether src should be copied over dst
type Eligibility int

const (
	// Eligible means src is a regular file whose contents differ from dst
	Eligible Eligibility = iota
	// SourceMissing means src does not exist
	SourceMissing
	// SourceDirectory means src is a directory, which is not supported
	SourceDirectory
	// SourceIrregular means src is neither a regular file nor a directory
	SourceIrregular
	// DestinationUnsupported means dst exists but is not a regular file
	DestinationUnsupported
	// InSync means src and dst have identical contents
	InSync
)

func (e Eligibility) String() string {
	switch e {
	case Eligible:
		return "eligible"
	case SourceMissing:
		return "not found"
	case SourceDirectory:
		return "directories unsupported"
	case SourceIrregular:
		return "not a regular file"
	case DestinationUnsupported:
		return "destination is not a regular file"
	case InSync:
		return "already in sync"
	default:
		return "unknown"
	}
}

// CanCopy decides whether src should be copied over dst. A missing dst
// never equals src. Only unexpected filesystem failures are returned as
// errors; every expected condition is reported through the Eligibility.
func CanCopy(src, dst string) (Eligibility, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return SourceMissing, nil
		}
		return 0, err
	}
	if srcInfo.IsDir() {
		return SourceDirectory, nil
	}
	if !srcInfo.Mode().IsRegular() {
		return SourceIrregular, nil
	}

	dstInfo, err := os.Stat(dst)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Eligible, nil
		}
		return 0, err
	}
	if !dstInfo.Mode().IsRegular() {
		return DestinationUnsupported, nil
	}

	if srcInfo.Size() != dstInfo.Size() {
		return Eligible, nil
	}

	srcHash, err := fileHash(src)
	if err != nil {
		return 0, err
	}
	dstHash, err := fileHash(dst)
	if err != nil {
		return 0, err
	}
	if srcHash == dstHash {
		return InSync, nil
	}
	return Eligible, nil
}

// fileHash computes the SHA256 hash of a file
func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
