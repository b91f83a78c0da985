/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fileutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileExists checks whether the given file exists.
// If the file exists, this method also returns the size of the file.
func FileExists(filePath string) (bool, int64, error) {
	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, errors.Wrapf(err, "error checking if file [%s] exists", filePath)
	}
	if fileInfo.IsDir() {
		return false, 0, errors.Errorf("the supplied path [%s] is a dir", filePath)
	}
	return true, fileInfo.Size(), err
}

// DirExists returns true if the dir already exists
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return false, errors.Errorf("the supplied path [%s] exists but is not a dir", path)
		}
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "error while checking if dir [%s] exists", path)
}

// CreateAndSyncFile creates a file, writes the content and syncs the file
func CreateAndSyncFile(filePath string, content []byte, perm os.FileMode) error {
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, perm)
	if err != nil {
		return errors.Wrapf(err, "error while creating file:%s", filePath)
	}
	if _, err = file.Write(content); err != nil {
		file.Close()
		return errors.Wrapf(err, "error while writing to file:%s", filePath)
	}
	if err = file.Sync(); err != nil {
		file.Close()
		return errors.Wrapf(err, "error while synching the file:%s", filePath)
	}
	if err := file.Close(); err != nil {
		return errors.Wrapf(err, "error while closing the file:%s", filePath)
	}
	return nil
}

// CreateAndSyncFileAtomically writes the content to the tmpFile, fsyncs the tmpFile,
// renames the tmpFile to the finalFile. In other words, in the event of a crash, either
// the final file will not be visible or it will have the full contents.
// The tmpFile should not be existing. The finalFile, if exists, will be overwritten (default rename behavior)
func CreateAndSyncFileAtomically(dir, tmpFile, finalFile string, content []byte, perm os.FileMode) error {
	tempFilePath := filepath.Join(dir, tmpFile)
	finalFilePath := filepath.Join(dir, finalFile)
	if err := CreateAndSyncFile(tempFilePath, content, perm); err != nil {
		return err
	}
	if err := os.Rename(tempFilePath, finalFilePath); err != nil {
		os.Remove(tempFilePath)
		return err
	}
	return SyncDir(dir)
}

// WriteFileAtomic replaces the file at path with content. Readers observe either
// the previous content or the new content, never a partial write.
func WriteFileAtomic(path string, content []byte, perm os.FileMode) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmpName := fmt.Sprintf(".%s.%d.tmp", name, os.Getpid())
	return CreateAndSyncFileAtomically(dir, tmpName, name, content, perm)
}

// RemoveIfExists removes the file at path. It reports whether a file was removed.
func RemoveIfExists(path string) (bool, error) {
	exists, _, err := FileExists(path)
	if err != nil || !exists {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		return false, errors.Wrapf(err, "error removing file [%s]", path)
	}
	return true, nil
}

// TempFile reserves an empty temporary file in dir (os.TempDir when empty) and returns
// its path together with a release func that removes it.
func TempFile(dir, pattern string) (string, func() error, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", nil, errors.Wrap(err, "error creating temporary file")
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", nil, errors.Wrapf(err, "error closing temporary file [%s]", path)
	}
	release := func() error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "error removing temporary file [%s]", path)
		}
		return nil
	}
	return path, release, nil
}

// SyncParentDir fsyncs the parent dir of the given path
func SyncParentDir(path string) error {
	return SyncDir(filepath.Dir(path))
}
