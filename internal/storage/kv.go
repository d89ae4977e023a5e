package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
)

// KVStore is the key/value tier: a small set of named slots holding whole
// JSON documents. There is no partial-update primitive at the storage
// layer; Update serializes the read-modify-write instead.
type KVStore struct {
	db      *sql.DB
	getSlot *sql.Stmt
	setSlot *sql.Stmt

	mu    sync.Mutex
	locks map[Key]*sync.Mutex
}

// newKVStore prepares statements against an already-migrated database.
func newKVStore(db *sql.DB) (*KVStore, error) {
	kv := &KVStore{db: db, locks: make(map[Key]*sync.Mutex)}

	var err error
	kv.getSlot, err = db.Prepare(`SELECT value FROM slots WHERE key = ?`)
	if err != nil {
		return nil, fmt.Errorf("prepare get slot: %w", err)
	}

	kv.setSlot, err = db.Prepare(`
		INSERT INTO slots (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare set slot: %w", err)
	}

	return kv, nil
}

// Set overwrites the slot's entire value with the JSON encoding of v.
func (kv *KVStore) Set(ctx context.Context, key Key, v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", key, err)
	}
	if _, err := kv.setSlot.ExecContext(ctx, string(key), string(data)); err != nil {
		return storeErr(fmt.Sprintf("set slot %s", key), err)
	}
	return nil
}

// Get decodes the slot's value into out. A missing slot is not an error:
// Get reports (false, nil) and leaves out untouched.
func (kv *KVStore) Get(ctx context.Context, key Key, out any) (bool, error) {
	var raw string
	err := kv.getSlot.QueryRowContext(ctx, string(key)).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, storeErr(fmt.Sprintf("get slot %s", key), err)
	}
	if err := sonic.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decode slot %s: %w", key, err)
	}
	return true, nil
}

// Update runs a read-modify-write on one slot under that slot's in-process
// lock, so concurrent updates of the same key can never clobber each other.
// apply receives the raw stored JSON (nil when the slot is absent) and
// returns the replacement value, which is written back in full.
func (kv *KVStore) Update(ctx context.Context, key Key, apply func(raw []byte) (any, error)) error {
	lock := kv.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	var raw []byte
	var stored string
	err := kv.getSlot.QueryRowContext(ctx, string(key)).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		raw = nil
	case err != nil:
		return storeErr(fmt.Sprintf("get slot %s", key), err)
	default:
		raw = []byte(stored)
	}

	next, err := apply(raw)
	if err != nil {
		return err
	}

	return kv.Set(ctx, key, next)
}

// keyLock returns the mutex guarding a slot, creating it on first use.
func (kv *KVStore) keyLock(key Key) *sync.Mutex {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	l, ok := kv.locks[key]
	if !ok {
		l = &sync.Mutex{}
		kv.locks[key] = l
	}
	return l
}

// Close releases the prepared statements. The underlying *sql.DB is not
// closed; that is the caller's responsibility.
func (kv *KVStore) Close() error {
	for _, stmt := range []*sql.Stmt{kv.getSlot, kv.setSlot} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
