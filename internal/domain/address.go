package domain

// Bounds is a bounding box in WGS-84 degrees.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Address is the normalized record every provider returns.
//
// Fields are pointers so an unset value stays distinguishable from a zero
// value. None of the JSON tags use omitempty: consumers always see the full
// key set, with null for anything the backend did not supply.
type Address struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Bounds    *Bounds  `json:"bounds"`

	StreetNumber *string `json:"street_number"`
	StreetName   *string `json:"street_name"`
	City         *string `json:"city"`          // primary urban locality
	CityDistrict *string `json:"city_district"` // sub-locality
	Zipcode      *string `json:"zipcode"`

	County     *string `json:"county"`
	CountyCode *string `json:"county_code"`
	Region     *string `json:"region"`
	RegionCode *string `json:"region_code"`

	Country     *string `json:"country"`
	CountryCode *string `json:"country_code"`

	Timezone *string `json:"timezone"`
}

// Defaults returns a record with every field unset.
func Defaults() Address {
	return Address{}
}

// LocalhostDefaults is the fixed record returned for loopback lookups.
func LocalhostDefaults() Address {
	a := Defaults()
	a.City = String("localhost")
	a.County = String("localhost")
	a.Region = String("localhost")
	a.Country = String("localhost")
	return a
}

// IsZero reports whether no field is set.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String returns a pointer to s, or nil when s is empty.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Float returns a pointer to f.
func Float(f float64) *float64 {
	return &f
}
