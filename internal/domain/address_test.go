package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var canonicalKeys = []string{
	"latitude", "longitude", "bounds",
	"street_number", "street_name", "city", "city_district", "zipcode",
	"county", "county_code", "region", "region_code",
	"country", "country_code", "timezone",
}

func TestDefaults_SerializesFullKeySetAsNull(t *testing.T) {
	data, err := json.Marshal(Defaults())
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.Len(t, fields, len(canonicalKeys))
	for _, key := range canonicalKeys {
		v, ok := fields[key]
		assert.True(t, ok, "missing key %q", key)
		assert.Nil(t, v, "key %q should be null", key)
	}
}

func TestLocalhostDefaults(t *testing.T) {
	a := LocalhostDefaults()

	require.NotNil(t, a.City)
	assert.Equal(t, "localhost", *a.City)
	assert.Equal(t, "localhost", *a.County)
	assert.Equal(t, "localhost", *a.Region)
	assert.Equal(t, "localhost", *a.Country)
	assert.Nil(t, a.Latitude)
	assert.Nil(t, a.Zipcode)
	assert.False(t, a.IsZero())
}

func TestAddress_IsZero(t *testing.T) {
	assert.True(t, Defaults().IsZero())

	a := Defaults()
	a.Latitude = Float(0)
	assert.False(t, a.IsZero(), "an explicit zero coordinate is still set")
}

func TestString_EmptyIsNil(t *testing.T) {
	assert.Nil(t, String(""))
	require.NotNil(t, String("Shanghai"))
	assert.Equal(t, "Shanghai", *String("Shanghai"))
}
