// Package storage provides people.Service implementations backed by local
// memory and by S3. The memory store serves tests and the demo server; the
// S3 store persists each person as a JSON object under a key prefix.
package storage
