package ledger

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/smartspend-dev/smartspend/internal/model"
)

// ledgerDir is the subdirectory of the data dir holding one CSV per user.
const ledgerDir = "ledgers"

// FileStore keeps each user's ledger in <dataDir>/ledgers/<user>.csv.
//
// Appends for one user are serialized and written with a single write call
// ending in a newline. Loads ignore anything after the last newline, so a
// reader racing a writer never sees half a row.
type FileStore struct {
	dir string
	options

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// NewFileStore creates a FileStore rooted at dataDir.
func NewFileStore(dataDir string, opts ...Option) *FileStore {
	return &FileStore{
		dir:     filepath.Join(dataDir, ledgerDir),
		options: newOptions(opts),
		locks:   make(map[string]*sync.RWMutex),
	}
}

// Path returns the ledger file of a user. The id is not validated.
func (s *FileStore) Path(userID string) string {
	return filepath.Join(s.dir, userID+".csv")
}

// Append implements Store.
func (s *FileStore) Append(ctx context.Context, userID string, kind model.Kind, category string, amount decimal.Decimal) (model.Record, error) {
	if err := ValidateUserID(userID); err != nil {
		return model.Record{}, err
	}
	rec, err := newRecord(s.now(), kind, category, amount)
	if err != nil {
		return model.Record{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return model.Record{}, storageError("creating ledger dir", err)
	}

	path := s.Path(userID)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return model.Record{}, storageError("opening ledger", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return model.Record{}, storageError("stat ledger", err)
	}

	var buf bytes.Buffer
	switch {
	case info.Size() == 0:
		buf.WriteString(Header + "\n")
	default:
		// A crashed writer may have left a row without its newline.
		// Terminate it so it is skipped alone instead of swallowing ours.
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, info.Size()-1); err != nil {
			return model.Record{}, storageError("reading ledger tail", err)
		}
		if last[0] != '\n' {
			buf.WriteByte('\n')
		}
	}
	if err := AppendRecords(&buf, []model.Record{rec}); err != nil {
		return model.Record{}, storageError("encoding record", err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return model.Record{}, storageError("writing ledger", err)
	}
	if err := f.Sync(); err != nil {
		return model.Record{}, storageError("syncing ledger", err)
	}

	s.log.Debug().Str("user", userID).Str("type", string(rec.Kind)).Str("amount", rec.Amount.String()).Msg("record appended")
	return rec, nil
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context, userID string) ([]model.Record, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lock := s.userLock(userID)
	lock.RLock()
	data, err := os.ReadFile(s.Path(userID))
	lock.RUnlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("reading ledger", err)
	}

	records, err := ReadRecords(bytes.NewReader(completeLines(data)), s.skipper(userID))
	if err != nil {
		return nil, storageError("decoding ledger", err)
	}
	return records, nil
}

func (s *FileStore) userLock(userID string) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[userID] = l
	}
	return l
}

// completeLines drops any bytes after the last newline.
func completeLines(data []byte) []byte {
	return data[:bytes.LastIndexByte(data, '\n')+1]
}
