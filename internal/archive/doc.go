// Package archive streams game soundtrack zip archives entry by entry.
//
// Reader walks local file headers front to back, the way archive/tar walks a
// tarball, so an archive is never buffered whole and the central directory is
// never needed. It handles stored and deflated entries, data descriptors, and
// zip64 local extras, and it verifies the CRC-32 of every entry read to the
// end.
//
// Extractor drives a Reader over one archive file, asks a trackname
// Classifier about each entry, hands track entries to a callback as a stream,
// and drains everything else.
package archive
