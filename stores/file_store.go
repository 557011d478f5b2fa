package stores

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"everink.io/ember/common/logging"
	cst "everink.io/ember/constants"
	le "everink.io/ember/errors"
)

// FileStore implements LetterStore backed by the local filesystem, one JSON
// file per letter. Meant for local development: nothing here enforces expiry
// on read access patterns alone, so records older than LetterTTL read as
// not-found and the sweeper worker prunes the files themselves.
type FileStore struct {
	Dir string
}

func (s *FileStore) Create(data string) (string, *le.LetterErr) {
	const errMsg = "error saving letter"
	clog := logging.WithFuncName()
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		clog.WithError(err).WithField("dir", s.Dir).Error("error ensuring letter directory")
		return "", le.ErrServiceFailure(errMsg).WithCause(err)
	}
	id, lerr := newLetterID()
	if lerr != nil {
		clog.WithError(lerr).Error("error generating letter id")
		return "", lerr
	}
	rec := record{Data: data, CreatedAt: time.Now().UTC()}
	b, err := json.Marshal(rec)
	if err != nil {
		clog.WithError(err).Error("error marshalling letter record")
		return "", le.ErrServiceFailure(errMsg).WithCause(err)
	}
	if err := os.WriteFile(s.path(id), b, 0o644); err != nil {
		clog.WithError(err).WithField("letterID", id).Error("error writing letter file")
		return "", le.ErrServiceFailure(errMsg).WithCause(err)
	}
	clog.WithField("letterID", id).Debug("letter saved")
	return id, nil
}

func (s *FileStore) Get(id string) (string, *le.LetterErr) {
	clog := logging.WithFuncName().WithField("letterID", id)
	b, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return "", le.ErrNotFound("letter not found")
		}
		msg := "error reading letter file"
		clog.WithError(err).Error(msg)
		return "", le.ErrServiceFailure(msg).WithCause(err)
	}
	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		msg := "error unmarshalling letter record"
		clog.WithError(err).Error(msg)
		return "", le.ErrServiceFailure(msg).WithCause(err)
	}
	if time.Since(rec.CreatedAt) > cst.LetterTTL {
		return "", le.ErrNotFound("letter not found")
	}
	return rec.Data, nil
}

func (s *FileStore) Close() *le.LetterErr {
	return nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.Dir, id+".json")
}
