package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/onair/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// SessionNamespace is the fixed key the login session is persisted under.
const SessionNamespace = "onair-auth"

// Bucket names
var (
	bucketTracks    = []byte("tracks")
	bucketPlaylists = []byte("playlists")
	bucketSession   = []byte("session")

	allBuckets = [][]byte{bucketTracks, bucketPlaylists, bucketSession}
)

// StationStore implements domain.Store using BoltDB.
type StationStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewStationStore opens the cache for one backend. An empty baseCacheDir
// gives a memory-only store.
func NewStationStore(baseCacheDir, serverURL string) (*StationStore, error) {
	if baseCacheDir == "" {
		return &StationStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if serverURL != "" {
		dir = filepath.Join(baseCacheDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "onair.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &StationStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *StationStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *StationStore) get(bucket []byte, key string, dest any) bool {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *StationStore) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *StationStore) delete(bucket []byte, key string) error {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucket); b != nil {
			return b.Delete([]byte(key))
		}
		return nil
	})
}

func (s *StationStore) deletePrefix(bucket []byte, prefix string) {
	s.mu.Lock()
	cachePrefix := string(bucket) + ":" + prefix
	for k := range s.cache {
		if strings.HasPrefix(k, cachePrefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		// collect first, deleting under a live cursor skips keys
		var keys [][]byte
		c := b.Cursor()
		for k, _ := c.Seek([]byte(prefix)); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// === Catalog ===

func (s *StationStore) GetTracks() ([]domain.Track, bool) {
	var tracks []domain.Track
	ok := s.get(bucketTracks, "list", &tracks)
	return tracks, ok
}

func (s *StationStore) SaveTracks(tracks []domain.Track) error {
	if err := s.set(bucketTracks, "list", tracks); err != nil {
		return err
	}
	return s.set(bucketTracks, "ts", time.Now().Unix())
}

// UpdateCachedTrack replaces one track in the cached catalog. It is a no-op
// when the catalog is not cached or does not contain the track.
func (s *StationStore) UpdateCachedTrack(track domain.Track) error {
	tracks, ok := s.GetTracks()
	if !ok {
		return nil
	}
	for i := range tracks {
		if tracks[i].ID == track.ID {
			tracks[i] = track
			return s.set(bucketTracks, "list", tracks)
		}
	}
	return nil
}

// SyncedAt returns when the catalog was last saved.
func (s *StationStore) SyncedAt() (time.Time, bool) {
	var ts int64
	if !s.get(bucketTracks, "ts", &ts) {
		return time.Time{}, false
	}
	return time.Unix(ts, 0), true
}

// === Playlists ===

func (s *StationStore) GetPlaylists() ([]domain.Playlist, bool) {
	var playlists []domain.Playlist
	ok := s.get(bucketPlaylists, "list", &playlists)
	return playlists, ok
}

func (s *StationStore) SavePlaylists(playlists []domain.Playlist) error {
	return s.set(bucketPlaylists, "list", playlists)
}

func (s *StationStore) GetPlaylistTracks(playlistID int64) ([]domain.Track, bool) {
	var tracks []domain.Track
	ok := s.get(bucketPlaylists, itemsKey(playlistID), &tracks)
	return tracks, ok
}

func (s *StationStore) SavePlaylistTracks(playlistID int64, tracks []domain.Track) error {
	return s.set(bucketPlaylists, itemsKey(playlistID), tracks)
}

func itemsKey(playlistID int64) string {
	return "items:" + strconv.FormatInt(playlistID, 10)
}

// === Session ===

func (s *StationStore) GetSession() (domain.Session, bool) {
	var session domain.Session
	ok := s.get(bucketSession, SessionNamespace, &session)
	return session, ok && session.Token != ""
}

func (s *StationStore) SaveSession(session domain.Session) error {
	return s.set(bucketSession, SessionNamespace, session)
}

func (s *StationStore) ClearSession() error {
	return s.delete(bucketSession, SessionNamespace)
}

// === Invalidation ===

func (s *StationStore) InvalidateTracks() {
	s.deletePrefix(bucketTracks, "")
}

// InvalidatePlaylists wipes the playlist list and every cached track list.
func (s *StationStore) InvalidatePlaylists() {
	s.deletePrefix(bucketPlaylists, "")
}

func (s *StationStore) InvalidatePlaylist(playlistID int64) {
	s.delete(bucketPlaylists, itemsKey(playlistID))
}

// InvalidateAll wipes cached catalog data. The session survives so a cache
// reset does not log the operator out.
func (s *StationStore) InvalidateAll() {
	s.InvalidateTracks()
	s.InvalidatePlaylists()
}
