// Package catalog indexes the media store and serves the paged asset
// listings the composition flow selects from.
//
// A scan walks the store directory, reads image headers in-process,
// probes videos with ffprobe, and assigns each file a stable identity
// derived from its path, size, and modification time. Files that cannot
// be decoded or probed are skipped without failing the scan. Listings
// are cursor-paged and ordered newest first. Import copies a file from
// outside the store with integrity verification and indexes it in place.
package catalog
