// Package kv provides a small Redis-like key-value store abstraction with
// in-memory and Redis-backed implementations.
//
// The session layer keeps its server-side state here. Backends register
// themselves through RegisterBackend from their init functions, so callers
// import the backends they want for side effects:
//
//	import (
//		_ "github.com/vdblog/vdblog-backend/pkg/kv/memory"
//		_ "github.com/vdblog/vdblog-backend/pkg/kv/redis"
//	)
//
//	store, err := kv.NewStoreFromConfig(kv.Config{Backend: kv.BackendMemory})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
package kv
