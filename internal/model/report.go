package model

// Activity status levels for a volcanic disaster report, ordered by severity.
// Values are case-sensitive and match the upstream monitoring terminology.
const (
	StatusNormal  = "Normal"
	StatusWaspada = "Waspada"
	StatusSiaga   = "Siaga"
	StatusAwas    = "Awas"
)

// ActivityStatuses lists every accepted status_aktivitas value.
var ActivityStatuses = []string{StatusNormal, StatusWaspada, StatusSiaga, StatusAwas}

// DisasterReport represents one volcanic-disaster status report row.
type DisasterReport struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	MountainName   string `json:"nama_gunung" gorm:"column:nama_gunung;type:varchar(255);not null"`
	ActivityStatus string `json:"status_aktivitas" gorm:"column:status_aktivitas;type:varchar(20);not null"`
	Recommendation string `json:"rekomendasi" gorm:"column:rekomendasi;type:text;not null"`
	Report         string `json:"laporan" gorm:"column:laporan;type:text;not null"`
}

// TableName keeps the legacy table name used by the existing database.
func (DisasterReport) TableName() string {
	return "bencana_gunung"
}
