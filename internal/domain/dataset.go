package domain

// Dataset describes the warehouse table a kind of endpoint lands in.
type Dataset struct {
	Table   string
	Columns []string
}

var (
	// AccelerometerData receives MySQL endpoints.
	AccelerometerData = Dataset{
		Table:   "accelerometer_data",
		Columns: []string{"endpoint_name", "timestamp", "accel_x", "accel_y", "accel_z", "source_id"},
	}

	// AccelMagData receives Postgres endpoints.
	AccelMagData = Dataset{
		Table: "accel_mag_data",
		Columns: []string{"endpoint_name", "timestamp", "accel_x", "accel_y", "accel_z",
			"mag_x", "mag_y", "mag_z", "source_id"},
	}

	// FileMetadata receives filesystem endpoints.
	FileMetadata = Dataset{
		Table:   "file_metadata",
		Columns: []string{"endpoint_name", "folder_path", "xml_file", "kmz_file", "image_count", "created_at"},
	}
)

// DatasetFor returns the warehouse target for kind.
func DatasetFor(kind Kind) (Dataset, bool) {
	switch kind {
	case KindMySQL:
		return AccelerometerData, true
	case KindPostgres:
		return AccelMagData, true
	case KindFile:
		return FileMetadata, true
	default:
		return Dataset{}, false
	}
}

// MeasurementRow shapes m into the column order of d, tagged with the endpoint name.
func (d Dataset) MeasurementRow(endpoint string, m Measurement) []any {
	if d.Table == AccelMagData.Table {
		return []any{endpoint, m.Timestamp, m.Accel.X, m.Accel.Y, m.Accel.Z,
			m.Mag.X, m.Mag.Y, m.Mag.Z, m.SourceID}
	}
	return []any{endpoint, m.Timestamp, m.Accel.X, m.Accel.Y, m.Accel.Z, m.SourceID}
}

// FolderRow shapes f into file_metadata column order.
func FolderRow(endpoint string, f FolderRecord) []any {
	var xml, kmz any
	if f.XMLFile != nil {
		xml = *f.XMLFile
	}
	if f.KMZFile != nil {
		kmz = *f.KMZFile
	}
	return []any{endpoint, f.Path, xml, kmz, f.ImageCount, f.CreatedAt}
}
