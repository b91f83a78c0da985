/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fileutil

// SyncDir is a noop on windows; rename durability is provided by the filesystem
func SyncDir(dirPath string) error {
	return nil
}
