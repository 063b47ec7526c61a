// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/captionmap/internal/captions"
	"github.com/tomtom215/captionmap/internal/metrics"
	"github.com/tomtom215/captionmap/internal/models"
)

const (
	videoPrefix       = "video/"
	metadataSuffix    = "/metadata"
	clauseInfix       = "/caption/"
	fullCaptionInfix  = "/full_caption/"
	fullCaptionFormat = "%010d"
)

// videoRecord is stored under video/<id>.
type videoRecord struct {
	ID          string    `json:"id"`
	NextOrdinal int       `json:"nextOrdinal"`
	Captions    int       `json:"captions"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// clauseRecord is stored under video/<id>/caption/<keyphrase>. Ordinal
// preserves the order in which keyphrases were first added to the video.
type clauseRecord struct {
	Keyphrase string  `json:"keyphrase"`
	Ordinal   int     `json:"ordinal"`
	Times     []int64 `json:"times"`
}

func videoKey(id string) []byte          { return []byte(videoPrefix + id) }
func videoSubtreePrefix(id string) []byte { return []byte(videoPrefix + id + "/") }
func metadataKey(id string) []byte       { return []byte(videoPrefix + id + metadataSuffix) }
func clausePrefix(id string) []byte      { return []byte(videoPrefix + id + clauseInfix) }
func fullCaptionPrefix(id string) []byte { return []byte(videoPrefix + id + fullCaptionInfix) }

func clauseKey(id, keyphrase string) []byte {
	return []byte(videoPrefix + id + clauseInfix + keyphrase)
}

func fullCaptionKey(id string, index int) []byte {
	return []byte(videoPrefix + id + fullCaptionInfix + fmt.Sprintf(fullCaptionFormat, index))
}

// validSegment reports whether s can be embedded in a key between slashes.
func validSegment(s string) bool {
	return s != "" && !strings.Contains(s, "/")
}

// CaptionStore persists keyphrase maps, full captions and metadata per video.
type CaptionStore struct {
	db  *badger.DB
	now func() time.Time
}

// NewCaptionStore creates a CaptionStore on an open BadgerDB.
func NewCaptionStore(db *badger.DB) *CaptionStore {
	return &CaptionStore{db: db, now: time.Now}
}

// MaxKeyphraseBytes bounds a stored keyphrase. Badger refuses keys over
// 65000 bytes, so longer keyphrases are rejected before any write.
const MaxKeyphraseBytes = 1024

// IndexVideo replaces everything stored for id with meta, full and the
// keyphrases of tl. It runs in a single transaction: when any part fails the
// previously stored video is left untouched.
func (s *CaptionStore) IndexVideo(ctx context.Context, id string, meta *models.VideoMetadata, full []captions.TimeRangedText, tl *captions.Timeline) error {
	return s.update(ctx, "index_video", ReasonAddVideo, id, func(txn *badger.Txn) error {
		if err := checkKeyphrases(id, tl); err != nil {
			return err
		}
		if err := s.putVideo(txn, id, meta, full); err != nil {
			return err
		}
		return s.putClauses(txn, id, tl)
	})
}

// AddVideo stores a video with its full captions and optional metadata,
// replacing everything previously stored for id.
func (s *CaptionStore) AddVideo(ctx context.Context, id string, meta *models.VideoMetadata, full []captions.TimeRangedText) error {
	return s.update(ctx, "add_video", ReasonAddVideo, id, func(txn *badger.Txn) error {
		return s.putVideo(txn, id, meta, full)
	})
}

// AddClause stores the timestamps of one keyphrase, replacing any previous
// value. A new keyphrase is ordered after all existing ones.
func (s *CaptionStore) AddClause(ctx context.Context, id, keyphrase string, times []int64) error {
	tl := captions.NewTimeline()
	tl.Set(keyphrase, times)
	return s.AddClauses(ctx, id, tl)
}

// AddClauses stores every keyphrase of tl in tl's order.
func (s *CaptionStore) AddClauses(ctx context.Context, id string, tl *captions.Timeline) error {
	return s.update(ctx, "add_keyphrase", ReasonAddKeyphrase, id, func(txn *badger.Txn) error {
		if err := checkKeyphrases(id, tl); err != nil {
			return err
		}
		return s.putClauses(txn, id, tl)
	})
}

func checkKeyphrases(id string, tl *captions.Timeline) error {
	var err error
	tl.Range(func(keyphrase string, _ []int64) bool {
		if len(keyphrase) > MaxKeyphraseBytes {
			err = newError(ReasonAddKeyphrase, id, fmt.Errorf("%w: keyphrase of %d bytes exceeds %d",
				ErrInvalidKey, len(keyphrase), MaxKeyphraseBytes))
			return false
		}
		return true
	})
	return err
}

func (s *CaptionStore) putVideo(txn *badger.Txn, id string, meta *models.VideoMetadata, full []captions.TimeRangedText) error {
	createdAt := s.now().UTC()
	if prev, err := getVideo(txn, id); err == nil {
		createdAt = prev.CreatedAt
	} else if !errors.Is(err, ErrVideoNotFound) {
		return err
	}

	if err := deletePrefix(txn, videoSubtreePrefix(id)); err != nil {
		return err
	}

	rec := videoRecord{
		ID:        id,
		Captions:  len(full),
		CreatedAt: createdAt,
		UpdatedAt: s.now().UTC(),
	}
	if err := putJSON(txn, videoKey(id), rec); err != nil {
		return err
	}

	if meta != nil {
		if err := putJSON(txn, metadataKey(id), meta); err != nil {
			return newError(ReasonAddMeta, id, err)
		}
	}

	for i, c := range full {
		if err := putJSON(txn, fullCaptionKey(id, i), c); err != nil {
			return newError(ReasonAddFullCaptions, id, err)
		}
	}
	return nil
}

// putClauses writes the keyphrases of tl under an existing video. Failures
// carry ReasonAddKeyphrase.
func (s *CaptionStore) putClauses(txn *badger.Txn, id string, tl *captions.Timeline) error {
	rec, err := getVideo(txn, id)
	if err != nil {
		return err
	}

	var txErr error
	tl.Range(func(keyphrase string, times []int64) bool {
		if keyphrase == "" {
			return true
		}
		clause := clauseRecord{Keyphrase: keyphrase, Times: times}
		if prev, err := getClause(txn, id, keyphrase); err == nil {
			clause.Ordinal = prev.Ordinal
		} else if errors.Is(err, ErrKeyphraseNotFound) {
			clause.Ordinal = rec.NextOrdinal
			rec.NextOrdinal++
		} else {
			txErr = err
			return false
		}
		if clause.Times == nil {
			clause.Times = []int64{}
		}
		if err := putJSON(txn, clauseKey(id, keyphrase), clause); err != nil {
			txErr = newError(ReasonAddKeyphrase, id, err)
			return false
		}
		return true
	})
	if txErr != nil {
		return txErr
	}

	rec.UpdatedAt = s.now().UTC()
	return putJSON(txn, videoKey(id), rec)
}

// AddMetadata stores meta for id. In MetadataAppend mode it is folded onto the
// stored document; with nothing stored both modes write meta as given.
func (s *CaptionStore) AddMetadata(ctx context.Context, id string, meta models.VideoMetadata, mode models.MetadataMode) error {
	op := ReasonOverwriteMeta
	if mode == models.MetadataAppend {
		op = ReasonAppendMeta
	}

	return s.update(ctx, "add_metadata", op, id, func(txn *badger.Txn) error {
		if _, err := getVideo(txn, id); err != nil {
			return err
		}

		next := meta
		if mode == models.MetadataAppend {
			var current models.VideoMetadata
			err := getJSON(txn, metadataKey(id), &current)
			switch {
			case err == nil:
				next = current.Append(meta)
			case errors.Is(err, badger.ErrKeyNotFound):
			default:
				return err
			}
		}

		if err := putJSON(txn, metadataKey(id), next); err != nil {
			return newError(ReasonAddMeta, id, err)
		}
		return nil
	})
}

// Keyphrases returns the stored keyphrase map of id in insertion order.
func (s *CaptionStore) Keyphrases(ctx context.Context, id string) (*captions.Timeline, error) {
	var clauses []clauseRecord
	err := s.view(ctx, "get_keyphrases", ReasonGetVideo, id, func(txn *badger.Txn) error {
		if _, err := getVideo(txn, id); err != nil {
			return err
		}
		return scanPrefix(txn, clausePrefix(id), func(val []byte) error {
			var c clauseRecord
			if err := json.Unmarshal(val, &c); err != nil {
				return fmt.Errorf("decode keyphrase: %w", err)
			}
			clauses = append(clauses, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(clauses, func(i, j int) bool { return clauses[i].Ordinal < clauses[j].Ordinal })

	tl := captions.NewTimeline()
	for _, c := range clauses {
		tl.Set(c.Keyphrase, c.Times)
	}
	return tl, nil
}

// TimesForKeyphrase returns the timestamps stored for one keyphrase of id.
func (s *CaptionStore) TimesForKeyphrase(ctx context.Context, id, keyphrase string) ([]int64, error) {
	var times []int64
	err := s.view(ctx, "get_keyphrase", ReasonGetKeyphrase, id, func(txn *badger.Txn) error {
		if _, err := getVideo(txn, id); err != nil {
			return err
		}
		c, err := getClause(txn, id, keyphrase)
		if err != nil {
			return err
		}
		times = c.Times
		return nil
	})
	return times, err
}

// FullCaptions returns the stored captions of id sorted by start time.
func (s *CaptionStore) FullCaptions(ctx context.Context, id string) ([]captions.TimeRangedText, error) {
	out := []captions.TimeRangedText{}
	err := s.view(ctx, "get_full_captions", ReasonGetVideo, id, func(txn *badger.Txn) error {
		if _, err := getVideo(txn, id); err != nil {
			return err
		}
		return scanPrefix(txn, fullCaptionPrefix(id), func(val []byte) error {
			var c captions.TimeRangedText
			if err := json.Unmarshal(val, &c); err != nil {
				return fmt.Errorf("decode caption: %w", err)
			}
			out = append(out, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

// Metadata returns the metadata stored for id.
func (s *CaptionStore) Metadata(ctx context.Context, id string) (*models.VideoMetadata, error) {
	var meta models.VideoMetadata
	err := s.view(ctx, "get_metadata", ReasonGetMeta, id, func(txn *badger.Txn) error {
		if _, err := getVideo(txn, id); err != nil {
			return err
		}
		err := getJSON(txn, metadataKey(id), &meta)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return newError(ReasonNoMeta, id, ErrMetadataNotFound)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// VideoExists reports whether anything is stored for id.
func (s *CaptionStore) VideoExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, "video_exists", ReasonGetVideo, id, videoKey)
}

// MetadataExists reports whether metadata is stored for id.
func (s *CaptionStore) MetadataExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, "metadata_exists", ReasonGetMeta, id, metadataKey)
}

// DeleteVideo removes id together with its keyphrases, captions and metadata.
func (s *CaptionStore) DeleteVideo(ctx context.Context, id string) error {
	return s.update(ctx, "delete_video", ReasonDeleteVideo, id, func(txn *badger.Txn) error {
		if _, err := getVideo(txn, id); err != nil {
			return err
		}
		if err := deletePrefix(txn, videoSubtreePrefix(id)); err != nil {
			return err
		}
		return txn.Delete(videoKey(id))
	})
}

// DeleteClause removes one keyphrase of id.
func (s *CaptionStore) DeleteClause(ctx context.Context, id, keyphrase string) error {
	return s.update(ctx, "delete_keyphrase", ReasonDeleteKeyphrase, id, func(txn *badger.Txn) error {
		if _, err := getVideo(txn, id); err != nil {
			return err
		}
		if _, err := getClause(txn, id, keyphrase); err != nil {
			return err
		}
		return txn.Delete(clauseKey(id, keyphrase))
	})
}

// DeleteMetadata removes the metadata of id.
func (s *CaptionStore) DeleteMetadata(ctx context.Context, id string) error {
	return s.update(ctx, "delete_metadata", ReasonDeleteMeta, id, func(txn *badger.Txn) error {
		if _, err := txn.Get(metadataKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return newError(ReasonNoMeta, id, ErrMetadataNotFound)
			}
			return err
		}
		return txn.Delete(metadataKey(id))
	})
}

// ListVideos returns every stored video id in key order.
func (s *CaptionStore) ListVideos(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := s.view(ctx, "list_videos", ReasonGetVideo, "", func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(videoPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rest := string(it.Item().Key()[len(prefix):])
			if !strings.Contains(rest, "/") {
				ids = append(ids, rest)
			}
		}
		return nil
	})
	return ids, err
}

func (s *CaptionStore) exists(ctx context.Context, opName string, op Reason, id string, key func(string) []byte) (bool, error) {
	found := false
	err := s.view(ctx, opName, op, id, func(txn *badger.Txn) error {
		_, err := txn.Get(key(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

func (s *CaptionStore) update(ctx context.Context, opName string, op Reason, id string, fn func(*badger.Txn) error) error {
	return run(ctx, opName, op, id, true, func() error { return s.db.Update(fn) })
}

func (s *CaptionStore) view(ctx context.Context, opName string, op Reason, id string, fn func(*badger.Txn) error) error {
	return run(ctx, opName, op, id, id != "", func() error { return s.db.View(fn) })
}

// run validates id when checkID is set, executes txn and normalises its error into *Error.
func run(ctx context.Context, opName string, op Reason, id string, checkID bool, txn func() error) error {
	start := time.Now()

	err := ctx.Err()
	if err == nil && checkID && !validSegment(id) {
		err = fmt.Errorf("%w: %q", ErrInvalidKey, id)
	}
	if err == nil {
		err = txn()
	}

	var se *Error
	if err != nil && !errors.As(err, &se) {
		se = newError(op, id, err)
		err = se
	}

	metrics.RecordStorageOperation(opName, time.Since(start), string(ReasonOf(err)))
	return err
}

func getVideo(txn *badger.Txn, id string) (videoRecord, error) {
	var rec videoRecord
	err := getJSON(txn, videoKey(id), &rec)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return rec, newError(ReasonNoVideo, id, ErrVideoNotFound)
	}
	return rec, err
}

func getClause(txn *badger.Txn, id, keyphrase string) (clauseRecord, error) {
	var c clauseRecord
	err := getJSON(txn, clauseKey(id, keyphrase), &c)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return c, newError(ReasonNoKeyphrase, id, fmt.Errorf("%w: %q", ErrKeyphraseNotFound, keyphrase))
	}
	return c, err
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func putJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return txn.Set(key, data)
}

func scanPrefix(txn *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func deletePrefix(txn *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
