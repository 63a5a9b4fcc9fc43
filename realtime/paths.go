package realtime

// Hierarchical path layout shared with the ingestion pipeline and the browser
// clients. Changing these breaks compatibility with data already in the store.
const (
	PathMessages  = "messages"
	PathStats     = "app_data/stats"
	PathCountries = "app_data/countries"
	PathNumbers   = "app_data/numbers"
	PathTeam      = "app_data/team"
)

// NumbersPath returns the inventory path for one country name.
func NumbersPath(countryName string) string {
	return PathNumbers + "/" + countryName
}

// AllocationsPath returns the allocation path for one member UUID.
func AllocationsPath(memberUUID string) string {
	return "app_data/allocations/" + memberUUID
}
