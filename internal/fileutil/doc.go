// Package fileutil discovers container files on disk.
//
// ScanDirectory walks a directory and collects files by extension
// (case-insensitive), optionally descending into subdirectories while
// skipping hidden and excluded ones. Results are absolute paths sorted
// alphabetically so batch runs process containers in a stable order.
// Non-fatal errors such as an unreadable subdirectory are collected in
// ScanResult.Errors and the walk continues.
//
// FindContainers is the entry point used by the scan command:
//
//	paths, err := fileutil.FindContainers("/path/to/assets", ".blend", false)
package fileutil
