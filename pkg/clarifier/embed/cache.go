package embed

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketVectors = []byte("vectors")

// Cache wraps an Embedder with a bbolt-backed vector cache keyed by
// sha1(modelID|text).
type Cache struct {
	next Embedder
	db   *bolt.DB
}

// NewCache opens (or creates) the cache database at path.
func NewCache(next Embedder, path string) (*Cache, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketVectors)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &Cache{next: next, db: db}, nil
}

// ModelID implements Embedder.
func (c *Cache) ModelID() string { return c.next.ModelID() }

// Close closes the cache and the wrapped embedder.
func (c *Cache) Close() error {
	dbErr := c.db.Close()
	if err := c.next.Close(); err != nil {
		return err
	}
	return dbErr
}

// EmbedText implements Embedder.
func (c *Cache) EmbedText(ctx context.Context, text string) ([]float32, error) {
	normalized := NormalizeText(text)
	key := c.key(normalized)

	vec, err := c.load(key)
	if err != nil {
		return nil, err
	}
	if vec != nil {
		return vec, nil
	}

	vec, err = c.next.EmbedText(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if err := c.save(key, vec); err != nil {
		return nil, err
	}
	return cloneVector(vec), nil
}

// EmbedTexts implements Embedder.
func (c *Cache) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, c, texts)
}

// Len returns the number of cached vectors.
func (c *Cache) Len() int {
	n := 0
	_ = c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketVectors).Stats().KeyN
		return nil
	})
	return n
}

func (c *Cache) key(text string) []byte {
	h := sha1.New()
	_, _ = io.WriteString(h, c.next.ModelID())
	_, _ = io.WriteString(h, "|")
	_, _ = io.WriteString(h, text)
	return []byte(hex.EncodeToString(h.Sum(nil)))
}

func (c *Cache) load(key []byte) ([]float32, error) {
	var vec []float32
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketVectors).Get(key)
		if v == nil {
			return nil
		}
		var err error
		vec, err = decodeVector(v)
		return err
	})
	return vec, err
}

func (c *Cache) save(key []byte, vec []float32) error {
	buf := encodeVector(vec)
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketVectors).Put(key, buf)
	})
}

// encodeVector writes a little-endian uint32 length followed by the
// float32 values.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4+len(vec)*4)
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(vec)))
	off := 4
	for _, v := range vec {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
		off += 4
	}
	return buf
}

// decodeVector copies the vector out of data, which is only valid inside
// the bbolt transaction.
func decodeVector(data []byte) ([]float32, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("cache entry too small")
	}
	length := int(binary.LittleEndian.Uint32(data[:4]))
	data = data[4:]
	if len(data) != length*4 {
		return nil, fmt.Errorf("cache length mismatch")
	}
	vec := make([]float32, length)
	for i := 0; i < length; i++ {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4 : (i+1)*4]))
	}
	return vec, nil
}
