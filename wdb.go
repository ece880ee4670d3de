package dotxch

import (
	"github.com/everFinance/dotxch/schema"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"os"
	"path"
)

const sqliteName = "dotxch.db"

// Wdb indexes observed domain records.
type Wdb struct {
	Db *gorm.DB
}

func NewMysqlDb(dsn string) *Wdb {
	logLevel := logger.Error
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:          logger.Default.LogMode(logLevel),
		CreateBatchSize: 200,
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect mysql db success")
	return &Wdb{Db: db}
}

func NewSqliteDb(dbDir string) *Wdb {
	if err := os.MkdirAll(dbDir, os.ModePerm); err != nil {
		panic(err)
	}
	db, err := gorm.Open(sqlite.Open(path.Join(dbDir, sqliteName)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect sqlite db success")
	return &Wdb{Db: db}
}

func (w *Wdb) Migrate() error {
	return w.Db.AutoMigrate(&schema.DomainIndex{}, &schema.DomainHistory{}, &schema.WatchedDomain{})
}

// UpsertIndex keeps the latest observed state per launcher id.
func (w *Wdb) UpsertIndex(idx schema.DomainIndex) error {
	return w.Db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "launcher_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at", "domain_name", "status_code", "tip_coin_id", "registration_update_height",
			"state_update_height", "expiration_timestamp", "pub_key", "metadata",
		}),
	}).Create(&idx).Error
}

func (w *Wdb) InsertHistory(h schema.DomainHistory) error {
	return w.Db.Clauses(clause.OnConflict{DoNothing: true}).Create(&h).Error
}

func (w *Wdb) GetIndexByName(name string) ([]schema.DomainIndex, error) {
	res := make([]schema.DomainIndex, 0)
	err := w.Db.Where("domain_name = ?", name).Order("creation_height, launcher_id").Find(&res).Error
	return res, err
}

func (w *Wdb) GetHistoryByName(name string, limit int) ([]schema.DomainHistory, error) {
	res := make([]schema.DomainHistory, 0)
	err := w.Db.Where("domain_name = ?", name).Order("spend_height desc, id desc").Limit(limit).Find(&res).Error
	return res, err
}

func (w *Wdb) AddWatched(name string) error {
	return w.Db.Clauses(clause.OnConflict{DoNothing: true}).Create(&schema.WatchedDomain{DomainName: name, LastStatus: -1}).Error
}

func (w *Wdb) RemoveWatched(name string) error {
	return w.Db.Where("domain_name = ?", name).Delete(&schema.WatchedDomain{}).Error
}

func (w *Wdb) GetWatched(limit int) ([]schema.WatchedDomain, error) {
	res := make([]schema.WatchedDomain, 0)
	err := w.Db.Order("id").Limit(limit).Find(&res).Error
	return res, err
}

func (w *Wdb) UpdateWatched(name, coinId string, status int) error {
	return w.Db.Model(&schema.WatchedDomain{}).Where("domain_name = ?", name).
		Updates(map[string]interface{}{"last_coin_id": coinId, "last_status": status}).Error
}

func (w *Wdb) Close() {
	sql, err := w.Db.DB()
	if err == nil {
		sql.Close()
	}
}
