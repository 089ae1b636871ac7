package telemetry

// Display metadata candidates within a directory vehicleLinks entry. The picture
// path descends into the asset renditions array.
var (
	vinPaths     = []string{"vin", "vehicleDetails.vin"}
	modelPaths   = []string{"vehicleDetails.model.label", "model.label", "modelLabel"}
	brandPaths   = []string{"vehicleDetails.brand.label", "brand.label"}
	picturePaths = []string{"vehicleDetails.assets.0.renditions.0.url", "pictureUrl"}
)

// VehicleDescription carries the display metadata the directory publishes for a
// vehicle.
type VehicleDescription struct {
	VIN        string `json:"vin"`
	Model      string `json:"model,omitempty"`
	Brand      string `json:"brand,omitempty"`
	PictureURL string `json:"pictureUrl,omitempty"`
}

// ParseVehicleDescription extracts display metadata from a single vehicleLinks
// entry. Absent fields are left empty.
func ParseVehicleDescription(entry Document) *VehicleDescription {
	var description VehicleDescription
	description.VIN, _ = entry.firstString(vinPaths...)
	description.Model, _ = entry.firstString(modelPaths...)
	description.Brand, _ = entry.firstString(brandPaths...)
	description.PictureURL, _ = entry.firstString(picturePaths...)
	return &description
}
