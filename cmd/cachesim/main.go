// Package main runs a timing experiment on a single-level blocking cache.
//
// A CPU agent issues synthetic instruction and data accesses through a
// write-back cache to an ideal memory controller. The geometry of the cache,
// the replacement policy, and the access pattern are all configurable from
// the command line. At the end of the run, the cache statistics are printed
// and, optionally, written into a SQLite database.
package main

func main() {
	Execute()
}
