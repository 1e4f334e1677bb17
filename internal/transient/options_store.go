package transient

import (
	"strconv"
	"strings"
	"time"

	"transient-cache-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	valuePrefix   = "_transient_"
	timeoutPrefix = "_transient_timeout_"

	// MaxKeyLength keeps the timeout row name within the 191 character
	// option_name column.
	MaxKeyLength = 191 - len(timeoutPrefix)
)

// OptionsStore keeps transients in the options table: the payload under
// "_transient_<key>" and, for entries with a ttl, the unix expiry under
// "_transient_timeout_<key>".
type OptionsStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewOptionsStore returns a store over an already migrated database.
func NewOptionsStore(db *gorm.DB) *OptionsStore {
	return &OptionsStore{db: db, now: time.Now}
}

func valueName(key string) string   { return valuePrefix + key }
func timeoutName(key string) string { return timeoutPrefix + key }

// Get implements Store.Get. An expired transient has both of its rows
// removed before the miss is reported.
func (s *OptionsStore) Get(key string) ([]byte, bool, error) {
	var rows []models.Option
	err := s.db.Where("option_name IN ?", []string{valueName(key), timeoutName(key)}).
		Find(&rows).Error
	if err != nil {
		return nil, false, err
	}

	var value *models.Option
	for i := range rows {
		switch rows[i].Name {
		case valueName(key):
			value = &rows[i]
		case timeoutName(key):
			expiresAt, err := strconv.ParseInt(string(rows[i].Value), 10, 64)
			if err == nil && expiresAt < s.now().Unix() {
				if _, err := s.Delete(key); err != nil {
					return nil, false, err
				}
				return nil, false, nil
			}
		}
	}
	if value == nil {
		return nil, false, nil
	}
	return value.Value, true, nil
}

// Set implements Store.Set. The value row and timeout row are written in one
// transaction; a zero ttl removes any previous timeout row.
func (s *OptionsStore) Set(key string, value []byte, ttl int64) error {
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if ttl < 0 {
		return ErrNegativeTTL
	}
	if value == nil {
		value = []byte{}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		autoload := models.AutoloadYes
		if ttl > 0 {
			autoload = models.AutoloadNo
			expiresAt := strconv.FormatInt(s.now().Unix()+ttl, 10)
			if err := upsertOption(tx, timeoutName(key), []byte(expiresAt), models.AutoloadNo); err != nil {
				return err
			}
		} else if err := tx.Where("option_name = ?", timeoutName(key)).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		return upsertOption(tx, valueName(key), value, autoload)
	})
}

func upsertOption(tx *gorm.DB, name string, value []byte, autoload string) error {
	row := models.Option{Name: name, Value: value, Autoload: autoload}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "option_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"option_value", "autoload"}),
	}).Create(&row).Error
}

// Delete implements Store.Delete.
func (s *OptionsStore) Delete(key string) (bool, error) {
	var deleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("option_name = ?", valueName(key)).Delete(&models.Option{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return tx.Where("option_name = ?", timeoutName(key)).Delete(&models.Option{}).Error
	})
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}

// DeletePrefix implements Sweeper with a single statement over both the
// value rows and the timeout rows. GLOB is used because SQLite's LIKE is
// case-insensitive.
func (s *OptionsStore) DeletePrefix(prefix string) (int64, error) {
	escaped := escapeGlob(prefix)
	res := s.db.Where("option_name GLOB ? OR option_name GLOB ?",
		valuePrefix+escaped+"*",
		timeoutPrefix+escaped+"*",
	).Delete(&models.Option{})
	return res.RowsAffected, res.Error
}

// PurgeExpired implements Purger. It returns the number of transients
// removed.
func (s *OptionsStore) PurgeExpired() (int64, error) {
	var purged int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var timeouts []string
		err := tx.Model(&models.Option{}).
			Where("option_name GLOB ? AND CAST(option_value AS INTEGER) < ?", timeoutPrefix+"*", s.now().Unix()).
			Pluck("option_name", &timeouts).Error
		if err != nil || len(timeouts) == 0 {
			return err
		}

		names := make([]string, 0, 2*len(timeouts))
		for _, t := range timeouts {
			names = append(names, t, valueName(strings.TrimPrefix(t, timeoutPrefix)))
		}
		purged = int64(len(timeouts))
		return tx.Where("option_name IN ?", names).Delete(&models.Option{}).Error
	})
	if err != nil {
		return 0, err
	}
	return purged, nil
}

var globEscaper = strings.NewReplacer("*", "[*]", "?", "[?]", "[", "[[]")

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

var (
	_ Store   = (*OptionsStore)(nil)
	_ Sweeper = (*OptionsStore)(nil)
	_ Purger  = (*OptionsStore)(nil)
)
