// Package inmemorypool provides a thread-safe, in-memory implementation of
// the poolstore.Store interface. It is designed for pools that fit
// comfortably in memory, which is every mempool this tool is pointed at.
package inmemorypool
