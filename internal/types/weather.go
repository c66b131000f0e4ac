package types

import (
	"time"
)

// Reading is one row of the station readings table. Units are the ones the
// stations report in: temperatures in °F, wind speed in mph, humidity in
// percent and solar irradiance in W/m².
type Reading struct {
	Timestamp   time.Time `gorm:"column:time"`
	StationName string    `gorm:"column:stationname"`
	StationType string    `gorm:"column:stationtype"`
	Barometer   float32   `gorm:"column:barometer"`
	OutTemp     float32   `gorm:"column:outtemp"`
	OutHumidity float32   `gorm:"column:outhumidity"`
	WindSpeed   float32   `gorm:"column:windspeed"`
	SolarWatts  float32   `gorm:"column:solarwatts"`
	DayET       float32   `gorm:"column:dayet"`
}

// TableName implements the GORM Tabler interface for the Reading struct
func (Reading) TableName() string {
	return "weather"
}
