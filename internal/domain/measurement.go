package domain

import "time"

// Axes is a three-axis sensor reading.
type Axes struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Measurement is one row of an endpoint's measurements table. MySQL sources only
// fill Accel; Postgres sources fill Accel and Mag.
type Measurement struct {
	SourceID  int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Accel     Axes      `json:"accel"`
	Mag       Axes      `json:"mag"`
}

// FolderRecord describes one drop folder found under a filesystem endpoint root.
// Path is the identity; there is no numeric ordering.
type FolderRecord struct {
	Path       string    `json:"folder_path"`
	XMLFile    *string   `json:"xml_file"`
	KMZFile    *string   `json:"kmz_file"`
	ImageCount int       `json:"image_count"`
	CreatedAt  time.Time `json:"created_at"`
}
