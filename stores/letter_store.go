package stores

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	log "github.com/sirupsen/logrus"

	cst "everink.io/ember/constants"
	le "everink.io/ember/errors"
)

// LetterStore vends the interface to persist and fetch encoded letters by
// short-link id. Records are write-once: an id is never updated in place.
type LetterStore interface {
	// Create stores data under a fresh id and returns the id. The record
	// expires LetterTTL after creation.
	Create(data string) (string, *le.LetterErr)
	// Get returns the data stored under id, or a NotFound error when the id
	// is unknown or the record expired.
	Get(id string) (string, *le.LetterErr)
	Close() *le.LetterErr
}

// Backend enumerates the supported storage kinds.
type Backend int

const (
	// BackendRemote is the durable Redis-backed store.
	BackendRemote Backend = iota
	// BackendLocal is the filesystem store meant for local development.
	BackendLocal
)

// Config selects and parameterizes the store exactly once at process start,
// so no handler ever branches on backend kind.
type Config struct {
	Backend     Backend
	RedisAddr   string
	RedisPasswd string
	RedisDB     int
	// Dir is the local store's directory, one file per letter.
	Dir string
	// HostedRuntime flags platforms with ephemeral local filesystems. A local
	// backend there would mint links that stop resolving once the instance
	// recycles, so selection fails over to a store that rejects every call
	// with a misconfiguration error instead of writing anywhere.
	HostedRuntime bool
}

// New builds the LetterStore described by cfg.
func New(cfg Config) (LetterStore, *le.LetterErr) {
	switch cfg.Backend {
	case BackendRemote:
		client := redis.NewClient(&redis.Options{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPasswd,
			DB:         cfg.RedisDB,
			MaxRetries: 3,
		})
		return &RedisStore{DB: client}, nil
	case BackendLocal:
		if cfg.HostedRuntime {
			log.Error("hosted runtime detected but no remote store configured; refusing local fallback")
			return &misconfiguredStore{}, nil
		}
		return &FileStore{Dir: cfg.Dir}, nil
	default:
		return nil, le.ErrBadInput(fmt.Sprintf("unknown store backend %d", cfg.Backend))
	}
}

const (
	// keyTmplLetter forms the storage key for a letter id.
	keyTmplLetter = "letter:%s"
	// idAlphabet holds URL-safe id characters; 64^6 ids make collisions
	// negligible at this service's write rate.
	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
)

func letterKey(id string) string {
	return fmt.Sprintf(keyTmplLetter, id)
}

// newLetterID returns a random short-link id.
func newLetterID() (string, *le.LetterErr) {
	b := make([]byte, cst.LetterIDLen)
	if _, err := rand.Read(b); err != nil {
		return "", le.ErrServiceFailure("error generating letter id").WithCause(err)
	}
	for i := range b {
		b[i] = idAlphabet[int(b[i])&63]
	}
	return string(b), nil
}

// misconfiguredStore stands in when the runtime expects a remote backend but
// none is configured. Every operation fails with a distinguishable error so
// senders get an actionable message instead of silently unreadable links.
type misconfiguredStore struct{}

func (s *misconfiguredStore) Create(string) (string, *le.LetterErr) {
	return "", errStoreMisconfigured()
}

func (s *misconfiguredStore) Get(string) (string, *le.LetterErr) {
	return "", errStoreMisconfigured()
}

func (s *misconfiguredStore) Close() *le.LetterErr {
	return nil
}

func errStoreMisconfigured() *le.LetterErr {
	return le.ErrMisconfigured("letter store not connected. Configure the remote store for this deployment")
}

// record is the on-disk shape of a locally stored letter.
type record struct {
	Data      string    `json:"data"`
	CreatedAt time.Time `json:"createdAt"`
}
