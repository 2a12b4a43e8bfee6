package Models

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GeocodeRecord caches one resolved location name. Computed routes are never stored.
type GeocodeRecord struct {
	gorm.Model
	Query            string         `json:"query" gorm:"uniqueIndex;size:255"`
	Name             string         `json:"name"`
	Latitude         float64        `json:"latitude"`
	Longitude        float64        `json:"longitude"`
	FormattedAddress string         `json:"formatted_address"`
	Provider         string         `json:"provider"`
	Raw              datatypes.JSON `json:"raw,omitempty"`
}

// FindGeocode returns the cached record for query, or gorm.ErrRecordNotFound.
func FindGeocode(db *gorm.DB, query string) (GeocodeRecord, error) {
	var rec GeocodeRecord
	err := db.Where("query = ?", query).First(&rec).Error
	return rec, err
}

// SaveGeocode inserts rec or refreshes the existing row for the same query.
func SaveGeocode(db *gorm.DB, rec *GeocodeRecord) error {
	if rec.Query == "" {
		return errors.New("geocode record without query")
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "query"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "latitude", "longitude", "formatted_address", "provider", "raw", "updated_at",
		}),
	}).Create(rec).Error
}

// PurgeStaleGeocodes hard-deletes records not refreshed since cutoff.
func PurgeStaleGeocodes(db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.Unscoped().Where("updated_at < ?", cutoff).Delete(&GeocodeRecord{})
	return res.RowsAffected, res.Error
}
