package stores

import (
	"github.com/go-redis/redis"
	log "github.com/sirupsen/logrus"

	"everink.io/ember/common/logging"
	cst "everink.io/ember/constants"
	le "everink.io/ember/errors"
)

// RedisStore is a LetterStore implementation driven by Redis. Expiry is
// store-enforced: the key carries a LetterTTL TTL and simply vanishes.
type RedisStore struct {
	DB *redis.Client
}

func (s *RedisStore) Create(data string) (string, *le.LetterErr) {
	const errMsg = "error saving letter"
	clog := logging.WithFuncName()
	id, err := newLetterID()
	if err != nil {
		clog.WithError(err).Error("error generating letter id")
		return "", err
	}
	key := letterKey(id)
	// ids are random and written at most once; NX guards the unlikely clash
	ok, rerr := s.DB.SetNX(key, data, cst.LetterTTL).Result()
	if rerr != nil {
		clog.WithError(rerr).WithField("key", key).Error("error calling redis to save letter")
		return "", le.ErrServiceFailure(errMsg).WithCause(rerr)
	}
	if !ok {
		clog.WithField("key", key).Error("letter id collision")
		return "", le.ErrServiceFailure(errMsg)
	}
	clog.WithField("letterID", id).Debug("letter saved")
	return id, nil
}

func (s *RedisStore) Get(id string) (string, *le.LetterErr) {
	clog := logging.WithFuncName().WithField("letterID", id)
	data, err := s.DB.Get(letterKey(id)).Result()
	if err == redis.Nil {
		// expired keys surface exactly like never-written ones
		return "", le.ErrNotFound("letter not found")
	}
	if err != nil {
		msg := "error getting letter data"
		clog.WithError(err).Error(msg)
		return "", le.ErrServiceFailure(msg).WithCause(err)
	}
	return data, nil
}

func (s *RedisStore) Close() *le.LetterErr {
	if err := s.DB.Close(); err != nil {
		log.WithError(err).Error("failed closing redis client")
		return le.ErrServiceFailure("failed closing redis client").WithCause(err)
	}
	return nil
}
