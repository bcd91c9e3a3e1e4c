package session

import (
	"encoding/json"
	"errors"
	"strconv"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"crowdwatch/internal/dao"
)

const (
	authInfoKey   = "auth_info"
	livePrefix    = "live_stream:"
	sessionPrefix = "session_analysis:"
)

// Store is the process-shared session state medium. One writer (the
// owning controller) per live key while active, any number of polling
// readers. Per-key writes are last-writer-wins; there is no merge
// logic.
type Store struct {
	db     *badger.DB
	logger *logrus.Entry
}

func OpenStore(dir string, logger *logrus.Entry) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, err
	}
	return &Store{
		db:     db,
		logger: logger,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(key []byte) ([]byte, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *Store) set(key, val []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

func (s *Store) delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func liveKey(videoId int) []byte {
	return []byte(livePrefix + strconv.Itoa(videoId))
}

func sessionKey(videoId int) []byte {
	return []byte(sessionPrefix + strconv.Itoa(videoId))
}

func (s *Store) SetLive(rec *LiveRecord) error {
	val, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.set(liveKey(rec.VideoId), val)
}

func (s *Store) GetLive(videoId int) (*LiveRecord, error) {
	val, err := s.get(liveKey(videoId))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	rec := &LiveRecord{}
	if err := json.Unmarshal(val, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) DeleteLive(videoId int) error {
	return s.delete(liveKey(videoId))
}

func (s *Store) ListLive() ([]*LiveRecord, error) {
	records := make([]*LiveRecord, 0, 4)
	err := s.listPrefix([]byte(livePrefix), func(val []byte) {
		rec := &LiveRecord{}
		if err := json.Unmarshal(val, rec); err != nil {
			s.logger.WithError(err).Error("unmarshal live record")
			return
		}
		records = append(records, rec)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) SetCompleted(rec *dao.AnalysisRecord) error {
	val, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.set(sessionKey(rec.VideoId), val)
}

func (s *Store) GetCompleted(videoId int) (*dao.AnalysisRecord, error) {
	val, err := s.get(sessionKey(videoId))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	rec := &dao.AnalysisRecord{}
	if err := json.Unmarshal(val, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) DeleteCompleted(videoId int) error {
	return s.delete(sessionKey(videoId))
}

func (s *Store) ListCompleted() ([]*dao.AnalysisRecord, error) {
	records := make([]*dao.AnalysisRecord, 0, 4)
	err := s.listPrefix([]byte(sessionPrefix), func(val []byte) {
		rec := &dao.AnalysisRecord{}
		if err := json.Unmarshal(val, rec); err != nil {
			s.logger.WithError(err).Error("unmarshal completed record")
			return
		}
		records = append(records, rec)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) listPrefix(prefix []byte, fn func(val []byte)) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 10
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				fn(val)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetAuthInfo() (*AuthInfo, error) {
	val, err := s.get([]byte(authInfoKey))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	info := &AuthInfo{}
	if err := json.Unmarshal(val, info); err != nil {
		return nil, err
	}
	return info, nil
}

func (s *Store) SetAuthInfo(info *AuthInfo) error {
	val, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return s.set([]byte(authInfoKey), val)
}

func (s *Store) DeleteAuthInfo() error {
	return s.delete([]byte(authInfoKey))
}
