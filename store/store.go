package store

// Package store provides gorkrepair.ExecutionStore implementations.
// The ExecutionStore interface is defined in the parent package
// (../store_interface.go) to avoid import cycles.
//
// This package contains concrete implementations:
//   - DynamoDBStore: read-only AWS DynamoDB backend
//   - MemoryStore: In-memory backend for testing
//
// Schema design follows single-table patterns defined in schema.go.
