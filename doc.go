// Package datapak implements the DataPak archive container format, its
// random-access Reader, and a VFS that overlays multiple archives into a
// single logical namespace with configurable precedence and per-path
// caching.
//
// A DataPak archive ("container") is a header, a contiguous data region,
// and a directory, written in that relative order (the directory always
// follows the data it describes). Reader opens a container and gives
// random access to its entries, decompressing on demand. VFS mounts
// several Readers and resolves a virtual path against them in mount order
// or reverse mount order. Builder collects files and writes a new
// container.
package datapak
